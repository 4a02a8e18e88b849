package handler

// ContextUserID is the gin context key the auth middleware stores the
// authenticated user id under.
const ContextUserID = "userID"
