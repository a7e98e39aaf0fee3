package apiclient

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"sort"
)

// Body encodes a request payload.
type Body interface {
	Encode() (r io.Reader, contentType string, err error)
}

type jsonBody struct{ v any }

// JSONBody sends v as application/json.
func JSONBody(v any) Body { return jsonBody{v: v} }

func (b jsonBody) Encode() (io.Reader, string, error) {
	buf, err := json.Marshal(b.v)
	if err != nil {
		return nil, "", err
	}
	return bytes.NewReader(buf), "application/json", nil
}

type multipartBody struct{ fields map[string]string }

// MultipartBody sends fields as multipart/form-data, in key order.
func MultipartBody(fields map[string]string) Body { return multipartBody{fields: fields} }

func (b multipartBody) Encode() (io.Reader, string, error) {
	keys := make([]string, 0, len(b.fields))
	for k := range b.fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for _, k := range keys {
		if err := w.WriteField(k, b.fields[k]); err != nil {
			return nil, "", err
		}
	}
	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return &buf, w.FormDataContentType(), nil
}
