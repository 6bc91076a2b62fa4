// Package thumbs maintains the persisted cache of square thumbnail images.
//
// The cache lives under the output tree (out/thumbs) and is additive only: a
// thumbnail is generated the first time its source image is referenced and
// reused on every later build. A source that changes after its thumbnail was
// generated is not picked up until the cached file is removed.
package thumbs
