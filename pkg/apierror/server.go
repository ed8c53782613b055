package apierror

import "net/http"

// hrdbd 服务器预定义错误
var (
	// ErrNoSession 查询请求指定的 session 不在内存中，或没有指定 session 且尚未执行过任何加载
	ErrNoSession = &Error{
		Code:       "NoSession",
		Message:    "no loaded session; POST /api/load first or pass ?session=",
		HTTPStatus: http.StatusServiceUnavailable,
	}

	// ErrNotFound 按名称查询的 enum/bitset/domain 在已加载的数据库中不存在
	ErrNotFound = &Error{
		Code:       "NotFound",
		Message:    "definition not found",
		HTTPStatus: http.StatusNotFound,
	}

	// ErrParseFailure 加载请求失败（例如根 HRD 文档不存在）；
	// 语法、schema 或引用错误只记录在会话的 estatus 中，不会产生此错误
	ErrParseFailure = &Error{
		Code:       "ParseFailure",
		Message:    "failed to parse the HRD document tree",
		HTTPStatus: http.StatusBadRequest,
	}

	// ErrBIOSParseFailure 读取 BIOS 镜像文件失败；DP INFO 子表的解码问题只记录为警告，不会产生此错误
	ErrBIOSParseFailure = &Error{
		Code:       "BIOSParseFailure",
		Message:    "failed to read the BIOS image",
		HTTPStatus: http.StatusBadRequest,
	}

	// ErrServerInternal 发生了内部错误
	ErrServerInternal = &Error{
		Code:       "ServerInternal",
		Message:    "an internal error has occurred",
		HTTPStatus: http.StatusInternalServerError,
	}
)
