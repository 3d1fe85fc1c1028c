package remote

type EncodeRequest struct {
	// Image holds the source picture in any registered format, PNG preferred.
	Image   []byte
	TopDown bool
}

type EncodeResponse struct {
	Bitmap []byte
}
