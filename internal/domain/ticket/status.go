package ticket

import "slices"

// closedStatuses are the workflow states treated as closed. A ticket in any
// other state is considered open by the realtime reconciliation.
var closedStatuses = []string{
	"협의된 차단 완료",
	"승인 대기",
	"오탐 확인 완료",
	"기 차단 완료",
	"정탐(승인필요 대상)",
	"정탐(선 조치 대상)",
	"차단 미승인 완료",
	"승인 후 차단 완료",
	"처리 완료",
	"완료",
	"해결됨",
}

// ClosedStatuses returns a copy of the closed workflow states.
func ClosedStatuses() []string {
	return slices.Clone(closedStatuses)
}

// IsClosedStatus reports whether status is one of the closed workflow states.
func IsClosedStatus(status string) bool {
	return slices.Contains(closedStatuses, status)
}
