package testutil

import (
	"net/http"
	"net/http/httptest"

	"github.com/johannesboyne/gofakes3"
	"github.com/johannesboyne/gofakes3/backend/s3mem"
)

type S3Server struct {
	server *httptest.Server
	URL    string
}

// dropEmptyDelimiter strips a present-but-empty "delimiter" query
// parameter. Real S3 treats an empty delimiter the same as an absent
// one (minio-go always sends the parameter), but the pinned gofakes3
// keys off its presence and mangles list results when it is empty.
func dropEmptyDelimiter(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		query := r.URL.Query()
		if d, ok := query["delimiter"]; ok && (len(d) == 0 || d[0] == "") {
			query.Del("delimiter")
			r.URL.RawQuery = query.Encode()
		}
		next.ServeHTTP(w, r)
	})
}

func NewS3Server() *S3Server {
	backend := s3mem.New()
	backend.CreateBucket(Bucket)
	faker := gofakes3.New(backend)
	server := httptest.NewServer(dropEmptyDelimiter(faker.Server()))
	return &S3Server{
		server: server,
		URL:    server.URL,
	}
}

func (s *S3Server) Close() {
	s.server.Close()
}
