// version.go
package version

import (
	"fmt"
	"runtime"
)

// AppName holds the name of the SDK.
var AppName = "wechat-1"

// Version holds the current version of the SDK.
var Version = "1.4.2"

// UserAgentBase is the product token sent in the User-Agent header.
const UserAgentBase = "wechat-1-go"

// GetAppName returns the name of the SDK.
func GetAppName() string {
	return AppName
}

// GetVersion returns the current version of the SDK.
func GetVersion() string {
	return Version
}

// GetUserAgentHeader returns the User-Agent header value, e.g. "wechat-1-go/1.4.2 (go1.22.4; linux)".
func GetUserAgentHeader() string {
	return fmt.Sprintf("%s/%s (%s; %s)", UserAgentBase, Version, runtime.Version(), runtime.GOOS)
}
