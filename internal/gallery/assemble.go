package gallery

// assembler tracks numbering while pages are appended in document order.
type assembler struct {
	pages       []PageDescriptor
	photoNumber int
}

func (a *assembler) add(p PageDescriptor) {
	p.Number = len(a.pages) + 1
	a.pages = append(a.pages, p)
}

func (a *assembler) place(photos []Photo) []PlacedPhoto {
	placed := make([]PlacedPhoto, len(photos))
	for i, p := range photos {
		a.photoNumber++
		placed[i] = PlacedPhoto{
			Number:      a.photoNumber,
			ID:          p.ID,
			URL:         p.RenderURL(),
			Orientation: p.Orientation,
		}
	}
	return placed
}

func (a *assembler) fixed(kind PageKind, section string, fields Fields) {
	a.add(PageDescriptor{Kind: kind, Section: section, Fields: copyFields(fields)})
}

// Assemble concatenates the fixed pages, photo pages and text placement into
// the final page sequence. It performs no I/O and cannot fail.
func Assemble(plan Plan, text TextSections, doc Document) []PageDescriptor {
	a := &assembler{}

	a.fixed(PageCover, SectionCover, doc.Cover)
	a.fixed(PageNarrative, SectionPresentation, doc.Presentation)
	a.fixed(PageNarrative, SectionSummary, doc.Summary)
	a.fixed(PageNarrative, SectionPropertyDetails, doc.PropertyDetails)

	for i, g := range plan.Portrait {
		page := PageDescriptor{Kind: PagePhotoPortrait, Photos: a.place(g.Photos)}
		last := i == len(plan.Portrait)-1
		if last && plan.Merge.Applied {
			page.Kind = PagePhotoLandscapeMerged
			page.Merged = a.place(plan.Merge.Group.Photos)
		}
		if last && plan.Text == TextPortraitTail {
			page.Text = copyText(text)
		}
		a.add(page)
	}

	for i, g := range plan.Landscape {
		page := PageDescriptor{Kind: PagePhotoLandscape, Photos: a.place(g.Photos)}
		if i == len(plan.Landscape)-1 && plan.Text == TextLandscapeTail {
			page.Text = copyText(text)
		}
		a.add(page)
	}

	if plan.Text == TextDedicatedPage {
		a.add(PageDescriptor{Kind: PageText, Text: copyText(text)})
	}

	a.fixed(PageClosing, SectionMethodology, doc.Methodology)
	a.fixed(PageClosing, SectionConsiderations, doc.Considerations)

	return a.pages
}

func copyText(t TextSections) *TextSections {
	return &t
}

func copyFields(f Fields) Fields {
	if len(f) == 0 {
		return nil
	}
	out := make(Fields, len(f))
	for k, v := range f {
		out[k] = v
	}
	return out
}
