// Package dom provides a small query interface over parsed HTML.
//
// Portal code only talks to the Node interface: FindAll, Find, Attr and
// Text. The implementation is backed by goquery selections over a tree
// built with golang.org/x/net/html, which tolerates the malformed markup
// the portal serves.
//
// # Usage
//
//	root, err := dom.Parse(markup)
//	for _, row := range root.FindAll("tr[id^='P']") {
//		link, ok := row.Find(`a[href*="acao=procedimento_trabalhar"]`)
//		...
//	}
package dom
