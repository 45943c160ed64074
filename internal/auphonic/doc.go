// Package auphonic wraps the Auphonic REST API used to master episode audio.
//
// Settings holds the validated encoding and algorithm options. Client
// sequences the production lifecycle (create, upload, configure, start,
// delete) and also reads production results, remaining credits and output
// downloads. Each call checks its own preconditions: Start refuses to run
// for a production this client never configured, without touching the
// network.
//
// Every failure is a typed error carrying the production ID and response
// body where one exists. All of them implement services.ErrorClassifier.
package auphonic
