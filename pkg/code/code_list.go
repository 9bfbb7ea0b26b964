package code

var (
	Success = NewSuss(1, lang{en: "Success", zh_cn: "成功"})

	Failed                = NewError(0, lang{en: "Failed", zh_cn: "失败"})
	ErrorServerInternal   = NewError(500, lang{en: "Internal server error", zh_cn: "服务器内部错误"})
	ErrorInvalidParams    = NewError(400, lang{en: "Invalid parameters", zh_cn: "参数错误"})
	ErrorNotFoundAPI      = NewError(404, lang{en: "API not found", zh_cn: "接口不存在"})
	ErrorTooManyRequests  = NewError(429, lang{en: "Too many requests", zh_cn: "请求过多"})
	ErrorRequestTimeout   = NewError(408, lang{en: "Request timeout", zh_cn: "请求超时"})
	ErrorDBQuery          = NewError(1001, lang{en: "Database query failed", zh_cn: "数据库查询失败"})
	ErrorDBWrite          = NewError(1002, lang{en: "Database write failed", zh_cn: "数据库写入失败"})
	ErrorNodeNotFound     = NewError(2001, lang{en: "Node not found", zh_cn: "节点不存在"})
	ErrorParentNotFound   = NewError(2002, lang{en: "Parent node not found", zh_cn: "父节点不存在"})
	ErrorNodeCreateFailed = NewError(2003, lang{en: "Node create failed", zh_cn: "节点创建失败"})
	ErrorNodeUpdateFailed = NewError(2004, lang{en: "Node update failed", zh_cn: "节点更新失败"})
	ErrorNodeDeleteFailed = NewError(2005, lang{en: "Node delete failed", zh_cn: "节点删除失败"})
	ErrorBranchFailed     = NewError(2006, lang{en: "Branch create failed", zh_cn: "分支创建失败"})
	ErrorImportInvalid    = NewError(2101, lang{en: "Roadmap file is not valid JSON", zh_cn: "路线图文件不是有效的 JSON"})
	ErrorImportFailed     = NewError(2102, lang{en: "Roadmap import failed", zh_cn: "路线图导入失败"})
	ErrorExportFailed     = NewError(2103, lang{en: "Roadmap export failed", zh_cn: "路线图导出失败"})
	ErrorSnapshotFailed   = NewError(2201, lang{en: "Snapshot failed", zh_cn: "快照失败"})
	ErrorSnapshotDisabled = NewError(2202, lang{en: "Snapshot is disabled", zh_cn: "快照未启用"})
	ErrorServerStatus     = NewError(3001, lang{en: "Server status unavailable", zh_cn: "服务器状态不可用"})
)
