package compiler

import (
	"sort"
)

// Ref identifies an entity by uid. ObjectType is set where the receiving
// field is split by type, as in set content.
type Ref struct {
	UID        string
	ObjectType string
}

// DiffSet is the change between two lists of entity references.
type DiffSet struct {
	Added   []Ref
	Removed []Ref
}

// IsEmpty reports whether the diff changes nothing.
func (d DiffSet) IsEmpty() bool {
	return len(d.Added) == 0 && len(d.Removed) == 0
}

// Validate reports ErrMalformedDiff when a uid appears in both halves of
// the diff or twice in one half.
func (d DiffSet) Validate() error {
	added := make(map[string]bool, len(d.Added))
	for _, r := range d.Added {
		if added[r.UID] {
			return compileErr(ErrMalformedDiff, r.ObjectType, "", "uid "+r.UID+" is added twice")
		}
		added[r.UID] = true
	}
	removed := make(map[string]bool, len(d.Removed))
	for _, r := range d.Removed {
		if removed[r.UID] {
			return compileErr(ErrMalformedDiff, r.ObjectType, "", "uid "+r.UID+" is removed twice")
		}
		if added[r.UID] {
			return compileErr(ErrMalformedDiff, r.ObjectType, "", "uid "+r.UID+" is both added and removed")
		}
		removed[r.UID] = true
	}
	return nil
}

// DiffBuilder records add and remove toggles. Each uid keeps only its last
// toggle, so a built DiffSet never holds a uid in both halves.
type DiffBuilder struct {
	order []string
	state map[string]toggle
}

type toggle struct {
	ref   Ref
	added bool
}

// NewDiffBuilder returns an empty builder.
func NewDiffBuilder() *DiffBuilder {
	return &DiffBuilder{state: map[string]toggle{}}
}

// Add marks ref as added, replacing an earlier toggle of the same uid.
func (b *DiffBuilder) Add(ref Ref) {
	b.set(ref, true)
}

// Remove marks ref as removed, replacing an earlier toggle of the same uid.
func (b *DiffBuilder) Remove(ref Ref) {
	b.set(ref, false)
}

func (b *DiffBuilder) set(ref Ref, added bool) {
	if _, ok := b.state[ref.UID]; !ok {
		b.order = append(b.order, ref.UID)
	}
	b.state[ref.UID] = toggle{ref: ref, added: added}
}

// Build returns the diff in first-toggle order.
func (b *DiffBuilder) Build() DiffSet {
	var d DiffSet
	for _, uid := range b.order {
		t := b.state[uid]
		if t.added {
			d.Added = append(d.Added, t.ref)
		} else {
			d.Removed = append(d.Removed, t.ref)
		}
	}
	return d
}

// ComputeDiff returns the references of desired missing from current as
// added, and those of current missing from desired as removed. References
// are keyed by uid; repeats collapse onto their first occurrence.
func ComputeDiff(current, desired []Ref) DiffSet {
	cur := refSet(current)
	want := refSet(desired)
	var d DiffSet
	for _, r := range uniqueRefs(desired) {
		if !cur[r.UID] {
			d.Added = append(d.Added, r)
		}
	}
	for _, r := range uniqueRefs(current) {
		if !want[r.UID] {
			d.Removed = append(d.Removed, r)
		}
	}
	return d
}

// UIDRefs wraps plain uids as references.
func UIDRefs(uids []string) []Ref {
	out := make([]Ref, 0, len(uids))
	for _, uid := range uids {
		out = append(out, Ref{UID: uid})
	}
	return out
}

func refSet(refs []Ref) map[string]bool {
	out := make(map[string]bool, len(refs))
	for _, r := range refs {
		out[r.UID] = true
	}
	return out
}

func uniqueRefs(refs []Ref) []Ref {
	seen := make(map[string]bool, len(refs))
	out := make([]Ref, 0, len(refs))
	for _, r := range refs {
		if seen[r.UID] {
			continue
		}
		seen[r.UID] = true
		out = append(out, r)
	}
	return out
}

// LinkChanges is the link/unlink input of a relationship, availability or
// segment list.
type LinkChanges struct {
	Link   []string `json:"link"`
	Unlink []string `json:"unlink"`
}

func linkChanges(d DiffSet) LinkChanges {
	c := LinkChanges{Link: []string{}, Unlink: []string{}}
	for _, r := range d.Added {
		c.Link = append(c.Link, r.UID)
	}
	for _, r := range d.Removed {
		c.Unlink = append(c.Unlink, r.UID)
	}
	return c
}

// ContentPosition places one content item.
type ContentPosition struct {
	UID      string `json:"uid"`
	Position int    `json:"position"`
}

// ContentTypeChanges is the content input for items of one object type.
type ContentTypeChanges struct {
	Link       []ContentPosition `json:"link,omitempty"`
	Reposition []ContentPosition `json:"reposition,omitempty"`
	Unlink     []string          `json:"unlink,omitempty"`
}

// ContentDiff maps object types to their content changes.
type ContentDiff map[string]*ContentTypeChanges

// ComputeContentDiff diffs two ordered content lists. Every desired item is
// emitted with its position, 1..N in desired order: new items as link, kept
// items as reposition. Items only in current are unlinked. Repeated uids in
// desired keep their first occurrence.
func ComputeContentDiff(current, desired []Ref) ContentDiff {
	d := ContentDiff{}
	changes := func(objectType string) *ContentTypeChanges {
		c, ok := d[objectType]
		if !ok {
			c = &ContentTypeChanges{}
			d[objectType] = c
		}
		return c
	}

	cur := refSet(current)
	for i, r := range uniqueRefs(desired) {
		p := ContentPosition{UID: r.UID, Position: i + 1}
		if cur[r.UID] {
			changes(r.ObjectType).Reposition = append(changes(r.ObjectType).Reposition, p)
		} else {
			changes(r.ObjectType).Link = append(changes(r.ObjectType).Link, p)
		}
	}
	want := refSet(desired)
	for _, r := range uniqueRefs(current) {
		if !want[r.UID] {
			changes(r.ObjectType).Unlink = append(changes(r.ObjectType).Unlink, r.UID)
		}
	}
	return d
}

// Positions returns every emitted position in ascending order.
func (d ContentDiff) Positions() []int {
	var out []int
	for _, c := range d {
		for _, p := range c.Link {
			out = append(out, p.Position)
		}
		for _, p := range c.Reposition {
			out = append(out, p.Position)
		}
	}
	sort.Ints(out)
	return out
}

// Order returns the uids of linked and repositioned items by position.
func (d ContentDiff) Order() []string {
	var all []ContentPosition
	for _, c := range d {
		all = append(all, c.Link...)
		all = append(all, c.Reposition...)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].Position < all[j].Position })
	out := make([]string, 0, len(all))
	for _, p := range all {
		out = append(out, p.UID)
	}
	return out
}

// DimensionValues assigns value slugs of one dimension.
type DimensionValues struct {
	DimensionSlug string   `json:"dimension_slug"`
	ValueSlugs    []string `json:"value_slugs"`
}

// DimensionChanges is the dimensions input of an availability rule.
type DimensionChanges struct {
	Link   []DimensionValues `json:"link"`
	Unlink []DimensionValues `json:"unlink"`
}

// ComputeDimensionDiff diffs dimension assignments given as dimension slug
// to value slugs. Dimensions and values are emitted sorted.
func ComputeDimensionDiff(current, desired map[string][]string) DimensionChanges {
	slugs := make(map[string]bool, len(current)+len(desired))
	for s := range current {
		slugs[s] = true
	}
	for s := range desired {
		slugs[s] = true
	}
	ordered := make([]string, 0, len(slugs))
	for s := range slugs {
		ordered = append(ordered, s)
	}
	sort.Strings(ordered)

	out := DimensionChanges{Link: []DimensionValues{}, Unlink: []DimensionValues{}}
	for _, slug := range ordered {
		d := ComputeDiff(UIDRefs(current[slug]), UIDRefs(desired[slug]))
		if added := sortedUIDs(d.Added); len(added) > 0 {
			out.Link = append(out.Link, DimensionValues{DimensionSlug: slug, ValueSlugs: added})
		}
		if removed := sortedUIDs(d.Removed); len(removed) > 0 {
			out.Unlink = append(out.Unlink, DimensionValues{DimensionSlug: slug, ValueSlugs: removed})
		}
	}
	return out
}

func sortedUIDs(refs []Ref) []string {
	out := make([]string, 0, len(refs))
	for _, r := range refs {
		out = append(out, r.UID)
	}
	sort.Strings(out)
	return out
}
