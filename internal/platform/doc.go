// Package platform provides the directory-link layer shared by dev-mode
// switching. On Unix systems it uses native symlinks directly. On Windows it
// attempts a symlink first (requires developer mode or elevation) and falls
// back to an unprivileged NTFS junction via mklink /J. Detection and removal
// handle both link kinds so status reporting never depends on which fallback
// was taken at creation time.
package platform
