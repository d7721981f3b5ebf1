package signals

import (
	"sort"
	"strings"
)

// academicSuffixes and academicHosts mark outbound links that read like
// references rather than navigation.
var academicSuffixes = []string{".edu", ".gov", ".ac.uk"}

var academicHostSubstrings = []string{
	"wikipedia.org",
	"doi.org",
	"ncbi.nlm.nih.gov",
	"arxiv.org",
	"scholar.google.com",
	"jstor.org",
}

// deriveEEATFlags applies the E-E-A-T heuristics over the extracted signals.
// externalHosts is the unique external host list from the link scan.
func deriveEEATFlags(p *PageSignals, externalHosts []string) []string {
	var flags []string

	if p.Author != "" {
		flags = append(flags, FlagAuthorByline)
	}
	if p.DatePublished != "" || p.DateModified != "" {
		flags = append(flags, FlagDates)
	}
	if p.ImageCount >= 3 {
		flags = append(flags, FlagRichMedia)
	}
	if p.OutboundLinks >= 3 {
		flags = append(flags, FlagCitedSources)
	}
	if hasAcademicHost(externalHosts) {
		flags = append(flags, FlagReferenceLinks)
	}
	if strings.Contains(strings.ToLower(p.Robots), "noindex") {
		flags = append(flags, FlagNoindex)
	}

	sort.Strings(flags)
	return flags
}

func hasAcademicHost(hosts []string) bool {
	for _, h := range hosts {
		for _, suffix := range academicSuffixes {
			if strings.HasSuffix(h, suffix) {
				return true
			}
		}
		for _, sub := range academicHostSubstrings {
			if strings.HasSuffix(h, sub) || h == sub {
				return true
			}
		}
	}
	return false
}
