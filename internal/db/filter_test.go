package db

import (
	"testing"

	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
)

func TestFilterBuilder(t *testing.T) {
	filter := NewFilter().
		Eq("sender_id", "a").
		Ne("status", "rejected").
		In("_id", []string{"m1", "m2"}).
		Build()

	require.Equal(t, "a", filter["sender_id"])
	require.Equal(t, bson.M{"$ne": "rejected"}, filter["status"])
	require.Equal(t, bson.M{"$in": []string{"m1", "m2"}}, filter["_id"])
}

func TestFilterBuilderOr(t *testing.T) {
	filter := NewFilter().
		Or(bson.M{"sender_id": "a"}, bson.M{"receiver_id": "a"}).
		Build()

	require.Len(t, filter["$or"], 2)

	// Empty variadic call leaves the filter untouched.
	require.NotContains(t, NewFilter().Or().Build(), "$or")
}

func TestPairCoversBothDirections(t *testing.T) {
	filter := Pair("sender_id", "receiver_id", "a", "b")

	clauses, ok := filter["$or"].([]bson.M)
	require.True(t, ok)
	require.Len(t, clauses, 2)
	require.Equal(t, bson.M{"sender_id": "a", "receiver_id": "b"}, clauses[0])
	require.Equal(t, bson.M{"sender_id": "b", "receiver_id": "a"}, clauses[1])
}

func TestEmpty(t *testing.T) {
	require.Empty(t, Empty())
}
