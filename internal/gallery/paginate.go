package gallery

// DefaultPageSize is the number of images per rendered page.
const DefaultPageSize = 20

// Paginate splits the manifest into pages of at most pageSize records, in
// manifest order. The last page may be shorter; no record is omitted or
// duplicated. Non-positive page sizes fall back to DefaultPageSize.
func Paginate(m *Manifest, pageSize int) []Page {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}

	total := (len(m.Images) + pageSize - 1) / pageSize

	pages := make([]Page, 0, total)
	for i := 0; i < total; i++ {
		start := i * pageSize
		end := start + pageSize
		if end > len(m.Images) {
			end = len(m.Images)
		}
		pages = append(pages, Page{
			Index:      i + 1,
			TotalPages: total,
			Records:    m.Images[start:end],
		})
	}
	return pages
}
