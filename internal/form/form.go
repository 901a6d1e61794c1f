package form

import (
	"net/url"
	"sort"
	"strings"

	"github.com/automatizamg/seilist/internal/dom"
)

// Element and attribute names used while serializing.
const (
	htmlElementInput    = "input"
	htmlElementSelect   = "select"
	htmlElementTextarea = "textarea"

	inputTypeRadio    = "radio"
	inputTypeCheckbox = "checkbox"
)

// State is the submittable state of one form at a point in time.
// It is mutated before resubmission and discarded after use.
type State map[string]string

// Serialize reads the submittable fields of formNode.
func Serialize(formNode dom.Node) State {
	state := make(State)

	for _, in := range formNode.FindAll(htmlElementInput) {
		name := in.AttrOr("name", "")
		if name == "" {
			continue
		}
		typ := strings.ToLower(in.AttrOr("type", ""))
		if typ == inputTypeRadio || typ == inputTypeCheckbox {
			if _, checked := in.Attr("checked"); !checked {
				continue
			}
		}
		state.setDefault(name, in.AttrOr("value", ""))
	}

	for _, sel := range formNode.FindAll(htmlElementSelect) {
		name := sel.AttrOr("name", "")
		if name == "" {
			continue
		}
		state.setDefault(name, selectedValue(sel))
	}

	for _, ta := range formNode.FindAll(htmlElementTextarea) {
		name := ta.AttrOr("name", "")
		if name == "" {
			continue
		}
		state.setDefault(name, strings.TrimSpace(ta.RawText()))
	}

	fillRadioGaps(formNode, state)
	return state
}

// selectedValue returns the value of the selected option, the first option
// when none is selected, or "" when the select has no options.
func selectedValue(sel dom.Node) string {
	if opt, ok := sel.Find("option[selected]"); ok {
		return opt.AttrOr("value", "")
	}
	if opt, ok := sel.Find("option"); ok {
		return opt.AttrOr("value", "")
	}
	return ""
}

// fillRadioGaps assigns the first radio value of every group that has no
// value yet. The portal rejects some posts when a radio group is missing.
func fillRadioGaps(formNode dom.Node, state State) {
	for _, radio := range formNode.FindAll(htmlElementInput) {
		name := radio.AttrOr("name", "")
		if name == "" || strings.ToLower(radio.AttrOr("type", "")) != inputTypeRadio {
			continue
		}
		state.setDefault(name, radio.AttrOr("value", ""))
	}
}

func (s State) setDefault(name, value string) {
	if _, ok := s[name]; ok {
		return
	}
	s[name] = value
}

// Set overrides a field.
func (s State) Set(name, value string) {
	s[name] = value
}

// Get returns the value of name and whether the field is present.
func (s State) Get(name string) (string, bool) {
	v, ok := s[name]
	return v, ok
}

// Has reports whether the field is present.
func (s State) Has(name string) bool {
	_, ok := s[name]
	return ok
}

// Clone returns an independent copy.
func (s State) Clone() State {
	out := make(State, len(s))
	for k, v := range s {
		out[k] = v
	}
	return out
}

// Values converts the state to url.Values.
func (s State) Values() url.Values {
	v := make(url.Values, len(s))
	for k, val := range s {
		v.Set(k, val)
	}
	return v
}

// Names returns the field names in sorted order.
func (s State) Names() []string {
	names := make([]string, 0, len(s))
	for k := range s {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// Action returns the form's action attribute, trimmed. Empty when absent.
func Action(formNode dom.Node) string {
	return strings.TrimSpace(formNode.AttrOr("action", ""))
}
