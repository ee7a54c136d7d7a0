package camera

// CameraBuilderOption defines a functional option for configuring a Camera
// during creation.
type CameraBuilderOption func(*cameraImpl)

// WithUp sets the camera's up vector.
//
// Parameters:
//   - x, y, z: up vector components
//
// Returns:
//   - CameraBuilderOption: a functional option for configuring the camera
func WithUp(x, y, z float32) CameraBuilderOption {
	return func(c *cameraImpl) {
		c.up = [3]float32{x, y, z}
	}
}

// WithFov sets the field of view in radians.
//
// Parameters:
//   - fov: field of view in radians
//
// Returns:
//   - CameraBuilderOption: a functional option for configuring the camera
func WithFov(fov float32) CameraBuilderOption {
	return func(c *cameraImpl) {
		c.fov = fov
	}
}

// WithAspect sets the aspect ratio (width / height).
//
// Parameters:
//   - aspect: the aspect ratio
//
// Returns:
//   - CameraBuilderOption: a functional option for configuring the camera
func WithAspect(aspect float32) CameraBuilderOption {
	return func(c *cameraImpl) {
		c.aspect = aspect
	}
}

// WithNear sets the near clipping plane distance.
//
// Parameters:
//   - near: near plane distance
//
// Returns:
//   - CameraBuilderOption: a functional option for configuring the camera
func WithNear(near float32) CameraBuilderOption {
	return func(c *cameraImpl) {
		c.near = near
	}
}

// WithFar sets the far clipping plane distance.
//
// Parameters:
//   - far: far plane distance
//
// Returns:
//   - CameraBuilderOption: a functional option for configuring the camera
func WithFar(far float32) CameraBuilderOption {
	return func(c *cameraImpl) {
		c.far = far
	}
}

// WithController attaches a CameraController to the camera.
//
// Parameters:
//   - ctrl: the controller to attach
//
// Returns:
//   - CameraBuilderOption: a functional option for configuring the camera
func WithController(ctrl CameraController) CameraBuilderOption {
	return func(c *cameraImpl) {
		c.controller = ctrl
	}
}
