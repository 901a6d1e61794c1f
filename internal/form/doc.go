// Package form serializes the submittable state of an HTML form into a
// flat name to value mapping, so that pages driven by form posts can be
// resubmitted with a few fields changed.
//
// Serialization rules, applied in this order:
//  1. input elements; radio and checkbox inputs only when checked
//  2. select elements; the selected option, else the first option, else ""
//  3. textarea elements; trimmed text content
//  4. radio groups that received no value take their first radio's value
//
// A field name set by an earlier rule (or an earlier element of the same
// rule) is never overwritten, except that rule 4 only fills gaps.
package form
