package state

import (
	"time"
)

// newLocalEnv creates a new LocalEnv instance with default values
func newLocalEnv() *LocalEnv {
	return &LocalEnv{
		start: time.Now(),
		// baseline rules beneath any document or user stylesheet
		DefaultStyle: []byte(`
page { margin: 40; }
dynamic-page { margin: 40; }
text { font-size: 12; }
.title { font-size: 24; }
.subtitle { font-size: 16; }
.small { font-size: 9; }
.framed { border-color: #000000; border-width: 1; padding: 6; }
`),
		DefaultWatermark: []byte(`<svg viewBox="0 0 500 80" xmlns="http://www.w3.org/2000/svg">
  <path d="
    M20 50 H200
    C220 15, 280 15, 300 50
    H480

    M250 50
    C235 40, 235 25, 250 15
    C265 25, 265 40, 250 50
  "
  fill="none" stroke="black" stroke-width="1"/>
</svg>`),
	}
}
