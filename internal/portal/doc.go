// Package portal drives the SEI web application: it authenticates, opens
// the control screen, switches the active unit, extracts process records
// from the result tables and pages through them.
//
// Everything the portal exposes is undocumented markup, so every selector,
// field name and marker string the package depends on is declared in
// selectors.go. Parsing functions are pure and operate on dom.Node values;
// only the methods of Portal perform requests, through a Session.
//
// The portal keeps navigation state on the server side, tied to the
// session cookies. Methods of Portal must therefore be called one at a
// time, in the order of the flow:
//
//	Login -> OpenControl -> CurrentUnit / SwitchUnit -> Extract / AdvancePage
package portal
