package assistant

// Stage 问答流水线阶段（显式状态机）
type Stage int

const (
	StageTransformQuery Stage = iota
	StageRetrieveVector
	StageRetrieveWeb
	StageFuseContext
	StageGenerateAnswer
	StageDone
)

// String 实现 fmt.Stringer，作为日志与指标标签
func (s Stage) String() string {
	switch s {
	case StageTransformQuery:
		return "transform_query"
	case StageRetrieveVector:
		return "retrieve_vector"
	case StageRetrieveWeb:
		return "retrieve_web"
	case StageFuseContext:
		return "fuse_context"
	case StageGenerateAnswer:
		return "generate_answer"
	case StageDone:
		return "done"
	default:
		return "unknown"
	}
}
