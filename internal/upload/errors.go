package upload

import (
	"errors"

	"github.com/igmoiiz/Project-Portal-AUMC/internal/portalapi"
)

var (
	ErrInvalidFileType  = errors.New("invalid file type")
	ErrNoFileSelected   = errors.New("no file selected")
	ErrUnauthenticated  = errors.New("not authenticated")
	ErrUploadInProgress = errors.New("upload already in progress")
)

// Error kinds as exposed to the rendering layer.
const (
	KindInvalidFileType = "invalid_file_type"
	KindNoFileSelected  = "no_file_selected"
	KindUnauthenticated = "unauthenticated"
	KindNetwork         = "network_error"
	KindHTTP            = "http_error"
	KindServerRejected  = "server_rejected"
	KindUnknown         = "unknown"
)

// ErrorKind classifies err into one of the Kind constants.
func ErrorKind(err error) string {
	var (
		netErr  *portalapi.NetworkError
		httpErr *portalapi.HTTPError
		appErr  *portalapi.ApplicationError
	)
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrInvalidFileType):
		return KindInvalidFileType
	case errors.Is(err, ErrNoFileSelected):
		return KindNoFileSelected
	case errors.Is(err, ErrUnauthenticated):
		return KindUnauthenticated
	case errors.As(err, &appErr):
		return KindServerRejected
	case errors.As(err, &httpErr):
		return KindHTTP
	case errors.As(err, &netErr):
		return KindNetwork
	default:
		return KindUnknown
	}
}
