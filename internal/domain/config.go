package domain

// KeyPrefix namespaces every key the pipeline writes to the backing store.
const KeyPrefix = "paperbase:"
