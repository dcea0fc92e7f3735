package v1

var (
	// common errors
	ErrSuccess             = newError(0, "ok")
	ErrBadRequest          = newError(400, "bad request")
	ErrUnauthorized        = newError(401, "unauthorized")
	ErrNotFound            = newError(404, "not found")
	ErrInternalServerError = newError(500, "internal server error")

	// inventory errors
	ErrStorageNotFound  = newError(2001, "storage not found")
	ErrNodeNotFound     = newError(2002, "node not found")
	ErrInvalidOperation = newError(2006, "invalid operation")
	ErrClusterNotFound  = newError(2007, "cluster not found")

	// deployment errors
	ErrDeploymentNotFound  = newError(3001, "deployment not found")
	ErrImageNotFound       = newError(3002, "image not found")
	ErrImageSourceConflict = newError(3003, "exactly one of cloud_image_id or iso_image_id is required")
	ErrDeploymentBusy      = newError(3004, "deployment is being deleted")
)
