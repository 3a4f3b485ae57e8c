package pdfsource

import (
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"

	"github.com/vectorless/pagetree/models"
)

// Outline walks the document catalog's /Outlines bookmark tree and
// flattens it to an ordered slice of (level, title, page) entries, or
// returns ok=false when the document carries no usable outline at all.
// The recursive First/Next/Kids walk mirrors the shape of
// benedoc-inc-pdfer's ExtractBookmarks, adapted from raw dict-string
// scanning to pdfcpu's dereferencing XRefTable.
func (d *Document) Outline() (entries []models.OutlineEntry, ok bool) {
	xRefTable := d.ctx.XRefTable

	root, err := xRefTable.Catalog()
	if err != nil || root == nil {
		return nil, false
	}

	outlinesObj, found := root.Find("Outlines")
	if !found {
		return nil, false
	}
	outlinesDict, err := xRefTable.DereferenceDict(outlinesObj)
	if err != nil || outlinesDict == nil {
		return nil, false
	}

	firstObj, found := outlinesDict.Find("First")
	if !found {
		return nil, false
	}

	pageLookup := d.buildPageLookup()

	var walk func(ref types.Object, level int)
	walk = func(ref types.Object, level int) {
		for ref != nil {
			dict, err := xRefTable.DereferenceDict(ref)
			if err != nil || dict == nil {
				return
			}

			title := outlineTitle(xRefTable, dict)
			page := outlineDestPage(xRefTable, dict, pageLookup)
			if title != "" {
				entries = append(entries, models.OutlineEntry{
					Level: level,
					Title: title,
					Page:  page,
				})
			}

			if firstChild, found := dict.Find("First"); found {
				walk(firstChild, level+1)
			}

			next, found := dict.Find("Next")
			if !found {
				return
			}
			ref = next
		}
	}

	walk(firstObj, 0)

	if len(entries) == 0 {
		return nil, false
	}
	return entries, true
}

// outlineTitle extracts and normalises a bookmark's /Title string.
func outlineTitle(xRefTable *model.XRefTable, dict types.Dict) string {
	titleObj, found := dict.Find("Title")
	if !found {
		return ""
	}
	s, err := xRefTable.DereferenceStringLiteral(titleObj, model.V10, nil)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(s))
}

// outlineDestPage resolves a bookmark's target page number through either
// a direct /Dest array or a /A /GoTo action's /D array, falling back to 0
// (unknown) when the destination can't be resolved — Page Mapping treats
// 0 the same as "no page", not as page zero.
func outlineDestPage(xRefTable *model.XRefTable, dict types.Dict, lookup map[types.IndirectRef]int) int {
	destObj, found := dict.Find("Dest")
	if !found {
		actionObj, found := dict.Find("A")
		if !found {
			return 0
		}
		actionDict, err := xRefTable.DereferenceDict(actionObj)
		if err != nil || actionDict == nil {
			return 0
		}
		destObj, found = actionDict.Find("D")
		if !found {
			return 0
		}
	}

	destArr, err := xRefTable.DereferenceArray(destObj)
	if err != nil || len(destArr) == 0 {
		return 0
	}

	pageRef, ok := destArr[0].(types.IndirectRef)
	if !ok {
		return 0
	}
	if page, found := lookup[pageRef]; found {
		return page
	}
	return 0
}

// buildPageLookup maps each page's indirect object reference to its
// 1-based page number, used to resolve outline destinations that point at
// a page object rather than an explicit page index.
func (d *Document) buildPageLookup() map[types.IndirectRef]int {
	lookup := make(map[types.IndirectRef]int, d.totalPages)
	xRefTable := d.ctx.XRefTable
	for pageNum := 1; pageNum <= d.totalPages; pageNum++ {
		ref, err := xRefTable.PageDictIndRef(pageNum)
		if err != nil || ref == nil {
			continue
		}
		lookup[*ref] = pageNum
	}
	return lookup
}
