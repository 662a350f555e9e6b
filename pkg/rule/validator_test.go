package rule_test

import (
	"testing"

	"github.com/go-playground/validator/v10"

	"github.com/yeisme/postvault/pkg/rule"
)

// TestStruct 用于测试 ValidateStruct.
type TestStruct struct {
	Owner string `rule:"required"`
	Size  int    `rule:"gte=0"`
}

// TestEngine 测试 Engine 函数返回非 nil 实例.
func TestEngine(t *testing.T) {
	engine := rule.Engine()
	if engine == nil {
		t.Error("Engine() returned nil")
	}
}

// TestValidateStruct 测试 ValidateStruct 对有效和无效结构体的验证.
func TestValidateStruct(t *testing.T) {
	// 有效结构体
	validStruct := TestStruct{Owner: "alice", Size: 10}

	err := rule.ValidateStruct(validStruct)
	if err != nil {
		t.Errorf("Expected no error for valid struct, got %v", err)
	}

	// 无效结构体：缺少 Owner
	invalidStruct1 := TestStruct{Owner: "", Size: 10}

	err = rule.ValidateStruct(invalidStruct1)
	if err == nil {
		t.Error("Expected error for invalid struct (missing owner), got nil")
	}

	// 无效结构体：Size 为负
	invalidStruct2 := TestStruct{Owner: "bob", Size: -1}

	err = rule.ValidateStruct(invalidStruct2)
	if err == nil {
		t.Error("Expected error for invalid struct (negative size), got nil")
	}
}

// TestErrors 测试 Errors 将验证错误解析为字段映射.
func TestErrors(t *testing.T) {
	err := rule.ValidateStruct(TestStruct{Owner: "", Size: -1})
	if err == nil {
		t.Fatal("Expected validation error, got nil")
	}

	fields := rule.Errors(err)
	if len(fields) != 2 {
		t.Errorf("Expected 2 offending fields, got %d: %v", len(fields), fields)
	}

	if _, ok := fields["Owner"]; !ok {
		t.Error("Expected Owner in offending fields")
	}

	// 非验证错误返回 nil
	if fields := rule.Errors(nil); fields != nil {
		t.Errorf("Expected nil for nil error, got %v", fields)
	}
}

// TestValidateVar 测试 ValidateVar 对变量的验证.
func TestValidateVar(t *testing.T) {
	// 有效 email
	err := rule.ValidateVar("test@example.com", "required,email")
	if err != nil {
		t.Errorf("Expected no error for valid email, got %v", err)
	}

	// 无效 email
	err = rule.ValidateVar("invalid-email", "required,email")
	if err == nil {
		t.Error("Expected error for invalid email, got nil")
	}
}

// TestRegisterValidation 测试注册自定义验证.
func TestRegisterValidation(t *testing.T) {
	// 注册自定义验证：检查字符串不以斜杠开头
	err := rule.RegisterValidation("no_leading_slash", func(fl validator.FieldLevel) bool {
		str, ok := fl.Field().Interface().(string)
		if !ok {
			return false
		}

		return len(str) == 0 || str[0] != '/'
	})
	if err != nil {
		t.Fatalf("Failed to register validation: %v", err)
	}

	if err = rule.ValidateVar("posts/a.jpg", "no_leading_slash"); err != nil {
		t.Errorf("Expected no error for relative key, got %v", err)
	}

	if err = rule.ValidateVar("/posts/a.jpg", "no_leading_slash"); err == nil {
		t.Error("Expected error for absolute key, got nil")
	}
}

// TestRegisterAlias 测试注册别名.
func TestRegisterAlias(t *testing.T) {
	rule.RegisterAlias("owner_id", "required,min=3")

	if err := rule.ValidateVar("abc", "owner_id"); err != nil {
		t.Errorf("Expected no error for valid string with alias, got %v", err)
	}

	if err := rule.ValidateVar("ab", "owner_id"); err == nil {
		t.Error("Expected error for invalid string with alias, got nil")
	}
}
