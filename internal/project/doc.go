// Package project reduces validated event sets into application records:
// repositories, issues with their resolved status, comments, merged issue
// timelines, patches and author profiles.
//
// Every function here is pure. Given the same event set, in any order and
// with any amount of duplication, it returns byte-identical output. Callers
// are expected to pass events that already passed event.Validate; the
// projectors deduplicate again and re-establish their own ordering, but they
// do not re-check signatures.
//
// Authorization is expressed as a Policy. Status updates only count when the
// policy allows their author; comments are never restricted.
//
// Records reference their parents through tags. Nothing checks that the
// parent exists: an issue may be projected without its repository ever
// having been seen.
package project
