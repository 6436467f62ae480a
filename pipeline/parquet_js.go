//go:build js

package pipeline

import (
	"fmt"

	"github.com/faist23/RideWeather-Pro2-sub005/elevation"
)

// The parquet writer depends on packages that do not build for js;
// browser callers request the csv profile format instead.
func marshalProfileParquet([]elevation.ProfilePoint) ([]byte, error) {
	return nil, fmt.Errorf("parquet profile output is unavailable in js builds (use format=csv)")
}
