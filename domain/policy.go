package domain

// Authorization predicates. Each one is evaluated against freshly read
// resource state; callers must never cache a decision across requests.
// Soft-deleted rows are excluded by the queries themselves, so a predicate
// only answers the ownership question.

// CanMutateProject reports whether p may update or soft-delete the project.
// The creator and admins qualify; the same rule governs direct reads.
func CanMutateProject(p Principal, project Project) bool {
	return project.CreatedBy == p.UserID || p.IsAdmin()
}

// CanAccessTask reports whether p may see or change the task. Read and
// write intentionally share one permission set: the task's creator, its
// assignee, and the owner of the task's project.
func CanAccessTask(p Principal, task Task, projectOwner uint) bool {
	if task.CreatedBy == p.UserID {
		return true
	}
	if task.AssignedTo != nil && *task.AssignedTo == p.UserID {
		return true
	}
	return projectOwner == p.UserID
}

// CanMutateTag reports whether p may update or soft-delete the tag. Only
// the creator qualifies; there is deliberately no admin override here,
// unlike projects.
func CanMutateTag(p Principal, tag Tag) bool {
	return tag.CreatedBy == p.UserID
}
