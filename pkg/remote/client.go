package remote

import (
	"bytes"
	"image"
	"image/png"
	"io"
	"net/rpc"
)

func New(addr string) (*Client, error) {
	client, err := rpc.DialHTTP("tcp", addr)
	if err != nil {
		return nil, err
	}

	return &Client{rpc: client}, nil
}

// Client offloads encoding to a bmpd daemon. It satisfies convert.Encoder.
type Client struct {
	rpc *rpc.Client
}

func (c *Client) Encode(w io.Writer, img image.Image, topDown bool) error {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return err
	}

	var resp EncodeResponse
	if err := c.rpc.Call("Service.Encode", &EncodeRequest{
		Image:   buf.Bytes(),
		TopDown: topDown,
	}, &resp); err != nil {
		return err
	}

	_, err := w.Write(resp.Bitmap)
	return err
}

func (c *Client) Close() error {
	return c.rpc.Close()
}
