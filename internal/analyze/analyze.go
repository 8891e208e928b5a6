// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package analyze implements the read-only archive analysis pass that
// produces a sized, categorized report and a shrink-savings estimate.
package analyze

import (
	"archive/zip"
	"fmt"
	"sort"
	"strings"

	"github.com/cereda/jbundle/internal/classify"
	"github.com/cereda/jbundle/internal/jberr"
)

const largeResourceThreshold = 1 << 20 // 1 MiB
const topN = 20

// CategoryStat tracks the size/count totals for one classify.Category.
type CategoryStat struct {
	Category classify.Category
	Size     int64
	Count    int
}

// GroupStat tracks the size/count totals for one package or namespace.
type GroupStat struct {
	Name  string
	Size  int64
	Count int
}

// Issue is a single diagnostic surfaced by the analyzer, e.g. a large
// resource entry.
type Issue struct {
	Kind string
	Name string
	Size int64
}

// Report is the full output of an analyzer pass over one archive.
type Report struct {
	Path             string
	TotalSize        int64
	Categories       []CategoryStat
	TopPackages      []GroupStat
	TopNamespaces    []GroupStat
	Issues           []Issue
	DuplicateClasses []string
	ShrinkEstimate   int64
}

// Analyze streams through the archive at path and produces a Report.
func Analyze(path string) (*Report, error) {
	r, err := zip.OpenReader(path)
	if err != nil {
		return nil, jberr.Wrap(jberr.BuildFailed, err, "cannot open %s for analysis", path)
	}
	defer r.Close()

	catTotals := map[classify.Category]*CategoryStat{}
	pkgTotals := map[string]*GroupStat{}
	nsTotals := map[string]*GroupStat{}
	classNames := map[string]int{}
	var issues []Issue
	var totalSize int64
	var shrinkEstimate int64

	for _, entry := range r.File {
		if entry.FileInfo().IsDir() {
			continue
		}
		size := int64(entry.UncompressedSize64)
		totalSize += size

		cat := classify.Classify(entry.Name)
		cs, ok := catTotals[cat]
		if !ok {
			cs = &CategoryStat{Category: cat}
			catTotals[cat] = cs
		}
		cs.Size += size
		cs.Count++

		pkg := classify.ExtractPackage(entry.Name)
		ps, ok := pkgTotals[pkg]
		if !ok {
			ps = &GroupStat{Name: pkg}
			pkgTotals[pkg] = ps
		}
		ps.Size += size
		ps.Count++

		if ns, ok := classify.DetectClojureNS(entry.Name); ok {
			nss, ok := nsTotals[ns]
			if !ok {
				nss = &GroupStat{Name: ns}
				nsTotals[ns] = nss
			}
			nss.Size += size
			nss.Count++
		}

		if cat == classify.Class {
			classNames[entry.Name]++
		}

		if cat == classify.Resource && size >= largeResourceThreshold {
			issues = append(issues, Issue{Kind: "Large resource", Name: entry.Name, Size: size})
		}

		if classify.ShouldSkip(entry.Name) {
			shrinkEstimate += size
		}
	}

	report := &Report{
		Path:           path,
		TotalSize:      totalSize,
		Issues:         issues,
		ShrinkEstimate: shrinkEstimate,
	}

	for _, cs := range catTotals {
		report.Categories = append(report.Categories, *cs)
	}
	sort.Slice(report.Categories, func(i, j int) bool {
		return report.Categories[i].Category < report.Categories[j].Category
	})

	report.TopPackages = topGroups(pkgTotals, topN)
	report.TopNamespaces = topGroups(nsTotals, topN)

	for name, count := range classNames {
		if count > 1 {
			report.DuplicateClasses = append(report.DuplicateClasses, name)
		}
	}
	sort.Strings(report.DuplicateClasses)

	return report, nil
}

func topGroups(totals map[string]*GroupStat, n int) []GroupStat {
	groups := make([]GroupStat, 0, len(totals))
	for _, g := range totals {
		groups = append(groups, *g)
	}
	sort.Slice(groups, func(i, j int) bool {
		if groups[i].Size != groups[j].Size {
			return groups[i].Size > groups[j].Size
		}
		return groups[i].Name < groups[j].Name
	})
	if len(groups) > n {
		groups = groups[:n]
	}
	return groups
}

// Markdown renders the report as a Markdown document for terminal or file
// output.
func Markdown(r *Report) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Archive analysis: %s\n\n", r.Path)
	fmt.Fprintf(&b, "Total uncompressed size: %d bytes\n\n", r.TotalSize)
	fmt.Fprintf(&b, "Shrink estimate: %d bytes\n\n", r.ShrinkEstimate)

	b.WriteString("## By category\n\n")
	b.WriteString("| Category | Size | Count |\n|---|---|---|\n")
	for _, c := range r.Categories {
		fmt.Fprintf(&b, "| %s | %d | %d |\n", c.Category, c.Size, c.Count)
	}

	b.WriteString("\n## Top packages\n\n")
	b.WriteString("| Package | Size | Count |\n|---|---|---|\n")
	for _, g := range r.TopPackages {
		fmt.Fprintf(&b, "| %s | %d | %d |\n", g.Name, g.Size, g.Count)
	}

	if len(r.TopNamespaces) > 0 {
		b.WriteString("\n## Top Clojure namespaces\n\n")
		b.WriteString("| Namespace | Size | Count |\n|---|---|---|\n")
		for _, g := range r.TopNamespaces {
			fmt.Fprintf(&b, "| %s | %d | %d |\n", g.Name, g.Size, g.Count)
		}
	}

	if len(r.Issues) > 0 {
		b.WriteString("\n## Issues\n\n")
		for _, iss := range r.Issues {
			fmt.Fprintf(&b, "- **%s**: %s (%d bytes)\n", iss.Kind, iss.Name, iss.Size)
		}
	}

	if len(r.DuplicateClasses) > 0 {
		b.WriteString("\n## Duplicate class entries\n\n")
		for _, name := range r.DuplicateClasses {
			fmt.Fprintf(&b, "- %s\n", name)
		}
	}

	return b.String()
}
