// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Package i18n is the localization provider. Catalogues for en, fi, it and
// ru are embedded YAML read with viper, whose dotted-key access gives
// Lookup("feedback.messages.required") directly. Missing keys fall back to
// English and then to the key itself.
package i18n
