package light

// DefaultShadowHalfExtent is the default orthographic half-extent (in world
// units) of the sun's shadow frustum. Controls how much of the scene around
// the origin is captured in the shadow map.
const DefaultShadowHalfExtent float32 = 40.0

// DefaultShadowNear is the default near plane of the sun's orthographic
// shadow projection.
const DefaultShadowNear float32 = 0.1

// DefaultShadowFar is the default far plane of the sun's orthographic shadow
// projection.
const DefaultShadowFar float32 = 200.0
