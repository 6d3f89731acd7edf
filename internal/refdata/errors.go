package refdata

import (
	"fmt"

	"github.com/rotisserie/eris"
)

// ErrMissingCRS reports a zone dataset that declares no coordinate
// reference system at all. Guessing one would silently corrupt every
// distance, so the load aborts instead.
var ErrMissingCRS = eris.New("refdata: zone dataset declares no CRS")

// UnsupportedCRSError reports a zone dataset in a CRS the loader cannot
// handle. Supported systems are WGS84 (EPSG:4326), reprojected at load
// time, and Lambert-93 (EPSG:2154), used as-is.
type UnsupportedCRSError struct {
	CRS string
}

func (e *UnsupportedCRSError) Error() string {
	return fmt.Sprintf("refdata: unsupported CRS %s (want EPSG:4326 or EPSG:2154)", e.CRS)
}
