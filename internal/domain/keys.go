package domain

// KeyPrefix namespaces every key this service writes to a shared store.
const KeyPrefix = "last30days:"
