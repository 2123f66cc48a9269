package mwb

import (
	"strconv"
	"strings"

	"github.com/beevik/etree"
	"github.com/google/uuid"
)

// Workbench stores its object graph (GRT) as nested <value> and <link>
// elements. Members of an object are addressed by their key attribute.

func member(obj *etree.Element, key string) *etree.Element {
	if obj == nil {
		return nil
	}

	for _, child := range obj.ChildElements() {
		if child.SelectAttrValue("key", "") == key {
			return child
		}
	}

	return nil
}

func stringMember(obj *etree.Element, key string) string {
	if m := member(obj, key); m != nil {
		return m.Text()
	}

	return ""
}

// intMember returns def when the member is absent or not an integer.
func intMember(obj *etree.Element, key string, def int) int {
	m := member(obj, key)
	if m == nil {
		return def
	}

	n, err := strconv.Atoi(strings.TrimSpace(m.Text()))
	if err != nil {
		return def
	}

	return n
}

func boolMember(obj *etree.Element, key string) bool {
	return intMember(obj, key, 0) != 0
}

// objects returns the object values of the list member key.
func objects(obj *etree.Element, key string) []*etree.Element {
	list := member(obj, key)
	if list == nil {
		return nil
	}

	var result []*etree.Element

	for _, child := range list.ChildElements() {
		if child.Tag == "value" && child.SelectAttrValue("type", "") == "object" {
			result = append(result, child)
		}
	}

	return result
}

// stringList returns the string values of the list member key.
func stringList(obj *etree.Element, key string) []string {
	list := member(obj, key)
	if list == nil {
		return nil
	}

	var result []string

	for _, child := range list.ChildElements() {
		if child.Tag == "value" {
			result = append(result, child.Text())
		}
	}

	return result
}

// linkList returns the canonical ids referenced by the list member key.
func linkList(obj *etree.Element, key string) []string {
	list := member(obj, key)
	if list == nil {
		return nil
	}

	var ids []string

	for _, child := range list.ChildElements() {
		if child.Tag == "link" {
			ids = append(ids, canonicalID(child.Text()))
		}
	}

	return ids
}

// link returns the canonical id referenced by the link member key.
func link(obj *etree.Element, key string) string {
	m := member(obj, key)
	if m == nil || m.Tag != "link" {
		return ""
	}

	return canonicalID(m.Text())
}

func objectID(obj *etree.Element) string {
	return canonicalID(obj.SelectAttrValue("id", ""))
}

// canonicalID normalises Workbench object ids. Ids are braced UUIDs in
// recent models; anything else is kept verbatim.
func canonicalID(id string) string {
	id = strings.TrimSpace(id)

	if parsed, err := uuid.Parse(id); err == nil {
		return parsed.String()
	}

	return id
}
