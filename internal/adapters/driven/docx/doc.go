// Package docx serializes assembled scenario layouts into Word documents.
//
// The writer emits minimal WordprocessingML directly: a styles part with
// the Arial Narrow house styles, a footer part with a page number field,
// and a document body built from the layout's title page, metadata table
// and content blocks. No third-party docx library is used; the OOXML
// subset needed here is small and fixed.
package docx
