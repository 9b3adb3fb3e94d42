package client

import (
	"net/http"
	"sort"
	"time"

	"github.com/apache/thrift/lib/go/thrift"

	"github.com/challenai/hbkit/thrift/hbase"
)

// http Header attached to HBase client
// for example, some cloud service provider HBase instances need some authrization headers.
type Header struct {
	Key, Value string
}

// HeadersFromMap turns configured headers into a stable, sorted list.
func HeadersFromMap(m map[string]string) []Header {
	headers := make([]Header, 0, len(m))
	for k, v := range m {
		headers = append(headers, Header{Key: k, Value: v})
	}
	sort.Slice(headers, func(i, j int) bool { return headers[i].Key < headers[j].Key })
	return headers
}

// RoundTrip implemnt http RoundTripper interface
type RoundTripper struct {
	Headers []Header
	// User is sent as the doAs identity when set.
	User string
	// Next defaults to http.DefaultTransport.
	Next http.RoundTripper
}

// RoundTrip implemnt http RoundTripper interface
func (rt *RoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	req = req.Clone(req.Context())
	for _, header := range rt.Headers {
		req.Header.Add(header.Key, header.Value)
	}
	if rt.User != "" {
		q := req.URL.Query()
		q.Set("doAs", rt.User)
		req.URL.RawQuery = q.Encode()
	}
	next := rt.Next
	if next == nil {
		next = http.DefaultTransport
	}
	return next.RoundTrip(req)
}

// Options of a thrift gateway client.
type Options struct {
	Headers []Header
	User    string
	Timeout time.Duration
	// Transport replaces http.DefaultTransport, tests point it at an httptest server.
	Transport http.RoundTripper
}

// create a new hbase client
func NewHBaseClient(addr string, opts Options) (*hbase.THBaseServiceClient, error) {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = time.Second * 10
	}
	httpClient := http.Client{
		Transport: &RoundTripper{
			Headers: opts.Headers,
			User:    opts.User,
			Next:    opts.Transport,
		},
		Timeout: timeout,
	}
	trans, err := thrift.NewTHttpClientWithOptions(addr, thrift.THttpClientOptions{Client: &httpClient})
	if err != nil {
		return nil, err
	}
	err = trans.Open()
	if err != nil {
		return nil, err
	}
	proto := thrift.NewTBinaryProtocol(trans, false, false)
	thriftClient := thrift.NewTStandardClient(proto, proto)
	return hbase.NewTHBaseServiceClient(thriftClient), nil
}
