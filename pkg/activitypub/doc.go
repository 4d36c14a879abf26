// Package activitypub holds the document and activity model exchanged
// between servers: actor profiles, WebFinger responses, the followers
// collection, and the open Activity object with its constructors and
// identifier conventions.
//
// Activities are deliberately schemaless (an Activity is a JSON object
// with typed accessors) because federation peers attach arbitrary
// vocabulary; the processing pipeline only ever relies on type, actor,
// id and object.
package activitypub
