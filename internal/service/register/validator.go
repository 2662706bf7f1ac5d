package register

import (
	"context"

	"register_server/internal/dao/mysql/repository"
	"register_server/internal/dto/request"
	"register_server/pkg/errorx"
)

// 唯一性与一致性校验失败的提示
const (
	MsgPasswordMismatch = "Passwords do not match"
	MsgUsernameTaken    = "Username already exists"
	MsgEmailTaken       = "Email already registered"
	MsgPhoneTaken       = "Phone number already registered"
)

// Validator 在格式校验之后执行跨字段与唯一性校验
type Validator struct {
	reader repository.AccountReader
}

// NewValidator 创建 Validator
func NewValidator(reader repository.AccountReader) *Validator {
	return &Validator{reader: reader}
}

// Validate 按 confirmPassword、username、email、phone 的顺序检查，所有错误一次性返回
// 存储查询失败属于内部错误，不计入字段错误
func (v *Validator) Validate(ctx context.Context, req request.RegisterRequest) error {
	fields := make(map[string]string)

	if req.Password != req.ConfirmPassword {
		fields["confirmPassword"] = MsgPasswordMismatch
	}

	checks := []struct {
		field  string
		msg    string
		exists func(context.Context, string) (bool, error)
		value  string
	}{
		{"username", MsgUsernameTaken, v.reader.ExistsByUsername, req.Username},
		{"email", MsgEmailTaken, v.reader.ExistsByEmail, req.Email},
		{"phone", MsgPhoneTaken, v.reader.ExistsByPhone, req.Phone},
	}
	for _, c := range checks {
		taken, err := c.exists(ctx, c.value)
		if err != nil {
			return errorx.Wrapf(err, errorx.CodeInternalError, "check %s uniqueness", c.field)
		}
		if taken {
			fields[c.field] = c.msg
		}
	}

	if len(fields) > 0 {
		return errorx.NewValidation(fields)
	}
	return nil
}
