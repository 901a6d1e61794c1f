// Package pipeline runs a listing as an ordered sequence of steps over a
// model.Run: login, open the control screen, settle the unit context and
// collect every page of both result groups.
//
// Steps run strictly one after another against a single portal session.
// The portal keeps paging and unit state on the server, so nothing here
// runs concurrently.
package pipeline
