// Package printing renders the bakery's printable documents: POS receipts on
// 80mm roll paper and the daily production sheet on A4.
//
// Documents are built from html/template sources by TemplateEngine and
// converted to PDF by a PDFRenderer. ChromedpRenderer drives a headless
// Chrome; DisabledRenderer is wired when printing is turned off.
package printing
