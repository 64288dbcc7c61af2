package domain

import "testing"

func TestCanMutateProject(t *testing.T) {
	project := Project{ID: 1, CreatedBy: 10}

	if !CanMutateProject(Principal{UserID: 10, Role: RoleMember}, project) {
		t.Fatal("creator should be allowed")
	}
	if !CanMutateProject(Principal{UserID: 99, Role: RoleAdmin}, project) {
		t.Fatal("admin should be allowed")
	}
	if CanMutateProject(Principal{UserID: 99, Role: RoleMember}, project) {
		t.Fatal("stranger should be denied")
	}
}

func TestCanAccessTask(t *testing.T) {
	assignee := uint(20)
	task := Task{ID: 1, CreatedBy: 10, AssignedTo: &assignee}
	const projectOwner = uint(30)

	cases := []struct {
		name string
		p    Principal
		want bool
	}{
		{"creator", Principal{UserID: 10, Role: RoleMember}, true},
		{"assignee", Principal{UserID: 20, Role: RoleMember}, true},
		{"project owner", Principal{UserID: 30, Role: RoleMember}, true},
		{"stranger", Principal{UserID: 99, Role: RoleMember}, false},
		{"admin without relation", Principal{UserID: 99, Role: RoleAdmin}, false},
	}
	for _, tc := range cases {
		if got := CanAccessTask(tc.p, task, projectOwner); got != tc.want {
			t.Errorf("%s: got %v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestCanAccessTaskUnassigned(t *testing.T) {
	task := Task{ID: 1, CreatedBy: 10}
	if CanAccessTask(Principal{UserID: 20, Role: RoleMember}, task, 30) {
		t.Fatal("non-creator should be denied on an unassigned task")
	}
}

func TestCanMutateTagNoAdminOverride(t *testing.T) {
	tag := Tag{ID: 1, CreatedBy: 10}

	if !CanMutateTag(Principal{UserID: 10, Role: RoleMember}, tag) {
		t.Fatal("creator should be allowed")
	}
	if CanMutateTag(Principal{UserID: 99, Role: RoleAdmin}, tag) {
		t.Fatal("admin must not bypass tag ownership")
	}
}
