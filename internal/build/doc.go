// Package build sequences a full site build.
//
// A build runs a fixed list of stages strictly in order: prepare_output,
// copy_static, load_posts, plan_outputs, thumbnails, post_pages, index,
// tag_pages and feed.
// Each stage is timed and its result recorded in a BuildReport. A fatal stage
// error or context cancellation stops the build; thumbnail failures are
// recorded as warnings and the build continues.
package build
