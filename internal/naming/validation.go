package naming

import (
	"fmt"
	"strings"

	utilvalidation "k8s.io/apimachinery/pkg/util/validation"
)

const (
	providerNameMaxLength = 63
	metadataKeyMaxLength  = 255
)

func validateDNS1123Label(name string, maximum int, labelKind string) error {
	if name == "" {
		return fmt.Errorf("%s name must not be empty", labelKind)
	}
	if len(name) > maximum {
		return fmt.Errorf("%s name exceeds %d characters", labelKind, maximum)
	}
	if errs := utilvalidation.IsDNS1123Label(name); len(errs) > 0 {
		return fmt.Errorf("invalid %s name: %s", labelKind, strings.Join(errs, ", "))
	}
	return nil
}

// ValidateProviderName checks that a provider name is a DNS-1123 label.
func ValidateProviderName(name string) error {
	return validateDNS1123Label(name, providerNameMaxLength, "provider")
}

// ValidateMetadataKey checks an image metadata key.
func ValidateMetadataKey(key string) error {
	if key == "" {
		return fmt.Errorf("metadata key must not be empty")
	}
	if len(key) > metadataKeyMaxLength {
		return fmt.Errorf("metadata key exceeds %d characters", metadataKeyMaxLength)
	}
	if strings.ContainsAny(key, " \t\n/") {
		return fmt.Errorf("invalid metadata key %q", key)
	}
	return nil
}
