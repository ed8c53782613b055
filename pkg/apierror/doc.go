// Package apierror 提供 AWS 风格的错误类型，用于所有服务的统一错误处理
//
// 错误响应格式支持 XML 和 JSON 两种格式：
//
//	XML 格式：
//	<Response>
//	    <Errors>
//	        <Error>
//	            <Code>NotFound</Code>
//	            <Message>definition not found</Message>
//	        </Error>
//	    </Errors>
//	    <RequestID>ea966190-f9aa-478e-9ede-example</RequestID>
//	</Response>
//
//	JSON 格式：
//	{
//	    "errors": [
//	        {
//	            "code": "NotFound",
//	            "message": "definition not found"
//	        }
//	    ],
//	    "requestID": "ea966190-f9aa-478e-9ede-example"
//	}
//
// 使用示例：
//
//	// 创建错误
//	err := apierror.NewError("NotFound", "definition not found")
//
//	// 创建错误响应
//	errorResp := apierror.NewErrorResponse("request-id", err)
//
//	// 在 gin 中使用
//	c.XML(http.StatusNotFound, errorResp)
//	// 或
//	c.JSON(http.StatusNotFound, errorResp)
//
// hrdbd 服务器错误变量（可在代码中直接使用）：
//
//   - ErrNoSession: 尚未加载任何 session
//   - ErrNotFound: 按名称查询的定义不存在
//   - ErrParseFailure: HRD 文档解析失败
//   - ErrBIOSParseFailure: BIOS 镜像解析失败
//   - ErrServerInternal: 服务器内部错误
//
// 使用示例：
//
//	// 直接使用预定义的错误
//	errorResp := apierror.NewErrorResponse("request-id", apierror.ErrNotFound)
//
//	// 或创建自定义错误
//	err := apierror.NewError("CustomError", "Custom error message")
package apierror
