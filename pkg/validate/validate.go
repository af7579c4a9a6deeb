package validate

import (
	stderrors "errors"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

var (
	instance *validator.Validate
	once     sync.Once
)

// V 返回共享的校验器，字段名取 json/query tag，便于前端定位
func V() *validator.Validate {
	once.Do(func() {
		instance = validator.New(validator.WithRequiredStructEnabled())
		instance.RegisterTagNameFunc(fieldName)
	})
	return instance
}

// Struct 校验请求 DTO
func Struct(s interface{}) error {
	return V().Struct(s)
}

// Fields 把校验错误展开为 字段 -> 规则，非校验错误返回 nil
func Fields(err error) map[string]interface{} {
	var ve validator.ValidationErrors
	if !stderrors.As(err, &ve) {
		return nil
	}

	fields := make(map[string]interface{}, len(ve))
	for _, fe := range ve {
		rule := fe.Tag()
		if fe.Param() != "" {
			rule += "=" + fe.Param()
		}
		fields[fe.Field()] = rule
	}
	return fields
}

func fieldName(fld reflect.StructField) string {
	for _, tag := range []string{"json", "query", "path"} {
		name := strings.SplitN(fld.Tag.Get(tag), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name != "" {
			return name
		}
	}
	return fld.Name
}
