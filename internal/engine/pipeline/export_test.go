package pipeline

// PurgeCaches exposes purgeCaches for tests.
var PurgeCaches = purgeCaches
