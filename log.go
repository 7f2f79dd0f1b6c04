package beanwire

import "github.com/op/go-logging"

// log is the package-level logger, grounded on kryptco-kr's pervasive use
// of op/go-logging for exactly this kind of leveled, per-package logger
// (kryptco-kr/logging.go). The codec never logs construction errors or
// decode failures itself - those are always returned to the caller as
// errors - but it does log at Debug/Warning for the two situations a
// caller debugging wire compatibility issues would want visibility into
// without instrumenting their own code: a class descriptor being built,
// and an unrecognized field being skipped during decode.
var log = logging.MustGetLogger("beanwire")
