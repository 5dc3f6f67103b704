// Package opencv binds capture devices, trackers, preview windows and video
// writers to OpenCV through gocv. The bindings are only compiled with the
// withcv build tag; without it every constructor returns
// ErrOpenCVUnavailable so the rest of the program builds without cgo.
package opencv

import "errors"

var (
	// ErrOpenCVUnavailable is returned when the binary was built without withcv.
	ErrOpenCVUnavailable = errors.New("opencv: built without the withcv tag")

	// ErrOpenFailed is returned when a capture source cannot be opened.
	ErrOpenFailed = errors.New("opencv: cannot open source")

	// ErrPropertyRejected is returned when the backend does not apply a property.
	ErrPropertyRejected = errors.New("opencv: property rejected")

	// ErrTrackerUnavailable is returned for algorithms missing from the OpenCV build.
	ErrTrackerUnavailable = errors.New("opencv: tracker not available")
)

// TrackerNames lists the OpenCV tracking algorithms this package can create.
var TrackerNames = []string{"MIL", "KCF", "CSRT"}
