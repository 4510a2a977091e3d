package fetch

import (
	"time"

	"github.com/instytutkryptografii/lektor/internal/utils"
)

// Request describes a single fetch of one URL to one output path. It is not
// mutated once the download starts.
type Request struct {
	URL          string
	OutputPath   string
	ChunkSize    int64
	ClientConfig utils.HTTPClientConfig
}

func (r Request) withDefaults() Request {
	if r.ChunkSize <= 0 {
		r.ChunkSize = utils.DefaultChunkSize
	}
	return r
}

// Result is what every public operation returns. Errors are folded into the
// Success flag and Message; nothing panics across this boundary.
type Result struct {
	Success    bool
	OutputPath string
	Message    string
}

// MediaOptions are the outward-facing knobs of one media download, mirroring
// the CLI flags one-to-one.
type MediaOptions struct {
	URL         string
	OutputDir   string
	OutputPath  string // explicit destination, skips generated naming
	HeadersFile string
	CookiesFile string
	Headers     map[string]string // ad-hoc headers, merged last over the profile
	NoAuth      bool
	Kind        string // "audio" or "video"; empty means classify from the URL
	ChunkSize   int64
	Timeout     time.Duration
	UserAgent   string
	ProxyURL    string
	SkipFix     bool
}
