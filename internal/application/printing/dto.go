package printing

// Document is a rendered PDF ready to be served
type Document struct {
	Filename    string
	ContentType string
	Data        []byte
	Pages       int
}
