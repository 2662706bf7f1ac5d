package handler

import (
	"fmt"
	"reflect"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode"

	"register_server/internal/dto/request"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/locales/en"
	"github.com/go-playground/locales/zh"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
	zh_translations "github.com/go-playground/validator/v10/translations/zh"
)

// Trans 全局翻译器，未配置专用提示的规则使用它翻译
var Trans ut.Translator

var (
	usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9._-]+$`)
	phonePattern    = regexp.MustCompile(`^\+?[1-9]\d{1,14}$`)
)

const (
	minPasswordLength = 8
	maxPasswordLength = 64
)

// fieldMessages 字段级提示，key 为 "json字段名.规则名"
var fieldMessages = map[string]string{
	"fullName.required":         "Full name is required",
	"fullName.not_blank":        "Full name is required",
	"fullName.min":              "Full name must be between 2 and 100 characters",
	"fullName.max":              "Full name must be between 2 and 100 characters",
	"username.required":         "Username is required",
	"username.min":              "Username must be between 3 and 50 characters",
	"username.max":              "Username must be between 3 and 50 characters",
	"username.username":         "Username can only contain letters, numbers, dots, underscores, and hyphens",
	"email.required":            "Email is required",
	"email.email":               "Enter a valid email address",
	"phone.required":            "Phone is required",
	"phone.phone":               "Enter a valid phone number",
	"password.required":         "Password is required",
	"password.password_complex": "Password must be 8–64 chars incl. upper/lower/digit/special",
	"confirmPassword.required":  "Confirm password is required",
	"confirmPassword.not_blank": "Confirm password is required",
	"dob.required":              "Date of birth is required",
	"dob.date_format":           "Invalid date format. Use YYYY-MM-DD",
	"dob.past_date":             "Date of birth must be in the past",
	"dob.min_age":               "You must be at least %s years old to register",
	"acceptTerms.accepted":      "You must accept the terms and conditions",
}

// InitTrans 初始化 gin 的校验引擎：注册自定义规则、json 字段名和翻译器
// locale 例如 "zh" 或 "en"
func InitTrans(locale string) (err error) {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return fmt.Errorf("unexpected validator engine %T", binding.Validator.Engine())
	}

	// 错误信息使用 json tag 作为字段名，如 confirmPassword
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	// Date 在校验前转换为 time.Time，使 required 等规则对其生效；格式错误时转换为原始字符串
	v.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if d, ok := field.Interface().(request.Date); ok {
			if !d.Valid() {
				return d.Raw()
			}
			return d.Time
		}
		return nil
	}, request.Date{})

	if err = registerValidations(v); err != nil {
		return err
	}

	zhT := zh.New()
	enT := en.New()
	uni := ut.New(enT, zhT, enT)

	Trans, ok = uni.GetTranslator(locale)
	if !ok {
		return fmt.Errorf("uni.GetTranslator(%s) failed", locale)
	}

	switch locale {
	case "zh":
		err = zh_translations.RegisterDefaultTranslations(v, Trans)
	default:
		err = en_translations.RegisterDefaultTranslations(v, Trans)
	}
	return err
}

// registerValidations 注册注册表单使用的自定义规则
func registerValidations(v *validator.Validate) error {
	rules := map[string]validator.Func{
		"not_blank":        validateNotBlank,
		"username":         validateUsername,
		"phone":            validatePhone,
		"password_complex": validatePasswordComplex,
		"date_format":      validateDateFormat,
		"past_date":        validatePastDate,
		"min_age":          validateMinAge,
		"accepted":         validateAccepted,
	}
	for tag, fn := range rules {
		if err := v.RegisterValidation(tag, fn); err != nil {
			return fmt.Errorf("register validation %s: %w", tag, err)
		}
	}
	return nil
}

// validateNotBlank 去掉首尾空白后不能为空
func validateNotBlank(fl validator.FieldLevel) bool {
	return strings.TrimSpace(fl.Field().String()) != ""
}

func validateUsername(fl validator.FieldLevel) bool {
	return usernamePattern.MatchString(fl.Field().String())
}

func validatePhone(fl validator.FieldLevel) bool {
	return phonePattern.MatchString(fl.Field().String())
}

// validatePasswordComplex 8-64 位可见 ASCII 字符，且包含大写、小写、数字、特殊字符
func validatePasswordComplex(fl validator.FieldLevel) bool {
	return isComplexPassword(fl.Field().String())
}

func isComplexPassword(password string) bool {
	if len(password) < minPasswordLength || len(password) > maxPasswordLength {
		return false
	}
	var hasUpper, hasLower, hasDigit, hasSpecial bool
	for _, r := range password {
		switch {
		case r > unicode.MaxASCII || unicode.IsSpace(r) || unicode.IsControl(r):
			return false
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsLower(r):
			hasLower = true
		case unicode.IsDigit(r):
			hasDigit = true
		case unicode.IsPunct(r) || unicode.IsSymbol(r):
			hasSpecial = true
		}
	}
	return hasUpper && hasLower && hasDigit && hasSpecial
}

// validateDateFormat 只有解码成功的 Date 才会以 time.Time 出现
func validateDateFormat(fl validator.FieldLevel) bool {
	_, ok := fl.Field().Interface().(time.Time)
	return ok
}

func validatePastDate(fl validator.FieldLevel) bool {
	t, ok := fl.Field().Interface().(time.Time)
	if !ok {
		return false
	}
	return t.Before(today())
}

// validateMinAge 按周岁计算年龄，参数为最小年龄
func validateMinAge(fl validator.FieldLevel) bool {
	t, ok := fl.Field().Interface().(time.Time)
	if !ok {
		return false
	}
	minAge, err := strconv.Atoi(fl.Param())
	if err != nil {
		return false
	}
	return ageOn(t, today()) >= minAge
}

func validateAccepted(fl validator.FieldLevel) bool {
	return fl.Field().Kind() == reflect.Bool && fl.Field().Bool()
}

// today 当天 UTC 零点
func today() time.Time {
	y, m, d := time.Now().UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func ageOn(dob, day time.Time) int {
	age := day.Year() - dob.Year()
	if day.Month() < dob.Month() || (day.Month() == dob.Month() && day.Day() < dob.Day()) {
		age--
	}
	return age
}

// TranslateFieldErrors 把 validator 错误转换为 json字段名 -> 提示 的映射
// 同一字段只保留第一条错误
func TranslateFieldErrors(errs validator.ValidationErrors) map[string]string {
	fields := make(map[string]string, len(errs))
	for _, fe := range errs {
		name := fe.Field()
		if _, exists := fields[name]; exists {
			continue
		}
		fields[name] = fieldMessage(fe)
	}
	return fields
}

func fieldMessage(fe validator.FieldError) string {
	if msg, ok := fieldMessages[fe.Field()+"."+fe.Tag()]; ok {
		if strings.Contains(msg, "%s") {
			return fmt.Sprintf(msg, fe.Param())
		}
		return msg
	}
	if Trans != nil {
		return fe.Translate(Trans)
	}
	return fe.Error()
}
