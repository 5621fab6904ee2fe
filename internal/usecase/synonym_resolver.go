package usecase

import "sort"

// DefaultSynonymGroups are the built-in ingredient alias groups. Every name in a
// group resolves to all the other names of that group.
var DefaultSynonymGroups = [][]string{
	{"eggplant", "aubergine", "brinjal"},
	{"zucchini", "courgette"},
	{"cilantro", "coriander", "coriander leaves"},
	{"scallion", "green onion", "spring onion"},
	{"bell pepper", "capsicum", "sweet pepper"},
	{"chickpea", "garbanzo bean", "chickpeas", "garbanzo beans"},
	{"arugula", "rocket"},
	{"powdered sugar", "icing sugar", "confectioners sugar"},
	{"cornstarch", "cornflour", "corn starch"},
	{"baking soda", "bicarbonate of soda", "sodium bicarbonate"},
	{"heavy cream", "double cream", "whipping cream"},
	{"shrimp", "prawn", "prawns"},
	{"ground beef", "minced beef", "beef mince"},
	{"all purpose flour", "allpurpose flour", "plain flour"},
	{"beet", "beetroot"},
	{"rutabaga", "swede"},
	{"snow peas", "mangetout"},
}

// SynonymResolver looks ingredient names up in a static alias table.
// It is read-only after construction and safe for concurrent use.
type SynonymResolver struct {
	aliases map[string][]string
}

// NewSynonymResolver builds a resolver from alias groups. Names are canonicalized;
// a name listed in several groups resolves to the union of those groups.
func NewSynonymResolver(groups ...[][]string) *SynonymResolver {
	sets := make(map[string]map[string]bool)

	for _, table := range groups {
		for _, group := range table {
			names := canonicalGroup(group)
			for _, name := range names {
				if sets[name] == nil {
					sets[name] = make(map[string]bool)
				}
				for _, alias := range names {
					if alias != name {
						sets[name][alias] = true
					}
				}
			}
		}
	}

	aliases := make(map[string][]string, len(sets))
	for name, set := range sets {
		list := make([]string, 0, len(set))
		for alias := range set {
			list = append(list, alias)
		}
		sort.Strings(list)
		aliases[name] = list
	}

	return &SynonymResolver{aliases: aliases}
}

// Resolve returns the alternate names for a canonical name, sorted.
// It returns an empty slice when the name has no entry.
func (r *SynonymResolver) Resolve(canonical string) []string {
	list := r.aliases[canonical]
	out := make([]string, len(list))
	copy(out, list)
	return out
}

// Size returns the number of names with at least one alias
func (r *SynonymResolver) Size() int {
	return len(r.aliases)
}

// canonicalGroup canonicalizes and de-duplicates a group, dropping empty names
func canonicalGroup(group []string) []string {
	seen := make(map[string]bool, len(group))
	names := make([]string, 0, len(group))
	for _, raw := range group {
		name := Canonicalize(raw)
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		names = append(names, name)
	}
	return names
}
