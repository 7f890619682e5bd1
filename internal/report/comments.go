package report

import "time"

// The comment selectors below are pure and stateless. They are exposed to
// the templates as render-time helpers and never mutate the source list.

// LastComment returns the most recent comment as a single-element slice, or
// an empty result when there are no comments.
func LastComment(comments []Comment) []Comment {
	if len(comments) == 0 {
		return nil
	}
	return comments[len(comments)-1:]
}

// MostRecentComments returns the last n comments in their original order.
// n is clamped to [1, len(comments)]: a non-positive n behaves as 1, and an
// n beyond the list length returns the whole list.
func MostRecentComments(comments []Comment, n int) []Comment {
	if len(comments) == 0 {
		return nil
	}
	if n <= 0 {
		n = 1
	}
	if n > len(comments) {
		n = len(comments)
	}
	return comments[len(comments)-n:]
}

// CommentsWithinLookback returns the comments created strictly within hours
// of now, preserving order. When the window excludes everything but the list
// was non-empty, the single most recent comment is returned instead, so a
// task with any comments always shows at least one.
func CommentsWithinLookback(comments []Comment, now time.Time, hours int) []Comment {
	var filtered []Comment
	window := time.Duration(hours) * time.Hour
	for _, c := range comments {
		if now.Sub(c.CreatedAt) < window {
			filtered = append(filtered, c)
		}
	}
	if len(filtered) == 0 && len(comments) > 0 {
		filtered = append(filtered, comments[len(comments)-1])
	}
	return filtered
}
