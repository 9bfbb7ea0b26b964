package logger

import "go.uber.org/zap"

// 统一的日志字段命名常量
// 用于确保整个项目中日志字段命名的一致性，便于日志查询和分析
const (
	// FieldTraceID 追踪 ID 字段
	FieldTraceID = "traceId"

	// FieldNodeID 节点 ID 字段
	FieldNodeID = "nodeId"

	// FieldParentID 父节点 ID 字段
	FieldParentID = "parentId"

	// FieldAction 操作类型字段
	FieldAction = "action"

	// FieldPath 文件路径字段
	FieldPath = "path"

	// FieldDuration 耗时字段
	FieldDuration = "duration"

	// FieldMethod 方法名称字段
	FieldMethod = "method"

	// FieldCount 数量字段
	FieldCount = "count"
)

// NodeID 节点 ID 日志字段
func NodeID(id string) zap.Field {
	return zap.String(FieldNodeID, id)
}

// ParentID 父节点 ID 日志字段
func ParentID(id string) zap.Field {
	return zap.String(FieldParentID, id)
}

// Action 操作类型日志字段
func Action(action string) zap.Field {
	return zap.String(FieldAction, action)
}

// TraceID 追踪 ID 日志字段
func TraceID(id string) zap.Field {
	return zap.String(FieldTraceID, id)
}
