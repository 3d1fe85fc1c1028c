package bitmap

// SwapChannels returns a copy of pix with the first and third byte of every
// 3 byte pixel exchanged, turning RGB into BGR and back. pix is not modified.
func SwapChannels(pix []byte) []byte {
	dst := make([]byte, len(pix))
	swapRow(dst, pix)
	return dst
}

// swapRow writes the channel-swapped pixels of src into dst. A trailing
// partial pixel is copied unchanged.
func swapRow(dst, src []byte) {
	n := len(src) - len(src)%bytesPerPixel
	for i := 0; i < n; i += bytesPerPixel {
		dst[i] = src[i+2]
		dst[i+1] = src[i+1]
		dst[i+2] = src[i]
	}
	copy(dst[n:], src[n:])
}
