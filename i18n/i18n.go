// Package i18n translates message codes (validation errors, toasts, labels)
// to Spanish, the default, or English.
package i18n

import (
	"context"
	"net/http"
	"strings"
)

const (
	Spanish    = "es"
	English    = "en"
	Default    = Spanish
	cookieName = "lang"
)

var messages = map[string]map[string]string{
	Spanish: {
		// validation
		"required":             "Este campo es obligatorio.",
		"too_long":             "El valor es demasiado largo.",
		"invalid_email":        "Ingresa un correo electrónico válido.",
		"invalid_format":       "El formato no es válido.",
		"invalid_number":       "Ingresa un número válido.",
		"must_be_positive":     "Debe ser mayor que cero.",
		"must_be_non_negative": "No puede ser negativo.",
		"max_two_decimals":     "Usa como máximo dos decimales.",
		"too_large":            "El valor es demasiado grande.",
		"total_too_large":      "El total de la cotización es demasiado grande.",
		"invalid_choice":       "Selecciona una opción válida.",
		"not_found":            "Selecciona una opción válida.",
		"at_least_one_line":    "Agrega al menos un concepto a la cotización.",
		"duplicate_sku":        "Ya existe un producto con este SKU. Ingresa un identificador diferente o edita el producto existente.",
		"email_taken":          "Ya existe una cuenta con este correo.",
		"password_too_short":   "La contraseña debe tener al menos 8 caracteres.",
		"password_mismatch":    "Las contraseñas no coinciden.",
		"wrong_password":       "La contraseña actual no es correcta.",
		"invalid_image":        "Sube una imagen válida (PNG, JPG, GIF o WebP).",
		"file_too_large":       "El archivo supera el tamaño máximo de 2 MB.",
		"invalid_credentials":  "Correo o contraseña incorrectos.",
		"form_errors":          "Revisa los campos marcados.",

		// toasts
		"client_created": "Cliente registrado correctamente.",
		"client_updated": "Cliente actualizado.",
		"client_deleted": "Cliente eliminado.",
		"item_created":   "Producto agregado al inventario.",
		"item_updated":   "Producto actualizado.",
		"item_deleted":   "Producto eliminado del inventario.",
		"item_in_use":    "No puedes eliminar este producto porque aparece en una cotización.",
		"quote_created":  "Cotización creada.",
		"quote_updated":  "Cotización actualizada.",
		"quote_deleted":  "Cotización eliminada.",
		"report_created": "Reporte guardado.",
		"report_updated": "Reporte actualizado.",
		"report_deleted": "Reporte eliminado.",
		"profile_saved":  "Perfil de empresa actualizado.",
		"account_saved":  "Datos de la cuenta actualizados.",
		"password_saved": "Contraseña actualizada.",

		// ui
		"app_name":         "CoreQuote",
		"nav_dashboard":    "Inicio",
		"nav_clients":      "Clientes",
		"nav_inventory":    "Inventario",
		"nav_quotes":       "Cotizaciones",
		"nav_reports":      "Reportes",
		"nav_profile":      "Perfil",
		"login":            "Iniciar sesión",
		"logout":           "Cerrar sesión",
		"signup":           "Crear cuenta",
		"save":             "Guardar",
		"cancel":           "Cancelar",
		"edit":             "Editar",
		"delete":           "Eliminar",
		"new":              "Nuevo",
		"confirm_delete":   "¿Seguro que deseas eliminarlo?",
		"empty_list":       "Aún no hay registros.",
		"name":             "Nombre",
		"email":            "Correo",
		"password":         "Contraseña",
		"password_confirm": "Confirmar contraseña",
		"sku":              "SKU",
		"stock":            "Existencia",
		"cost":             "Costo",
		"client":           "Cliente",
		"status":           "Estado",
		"total":            "Total",
		"date":             "Fecha",
		"item":             "Producto",
		"quantity":         "Cantidad",
		"unit_price":       "Precio unitario",
		"subtotal":         "Subtotal",
		"add_line":         "Agregar concepto",
		"download_pdf":     "Descargar PDF",
		"description":      "Descripción",
		"legal_name":       "Razón social",
		"tax_id":           "RFC",
		"tax_address":      "Domicilio fiscal",
		"contact_email":    "Correo de contacto",
		"contact_phone":    "Teléfono de contacto",
		"logo":             "Logotipo",
		"remove_logo":      "Quitar logotipo",
		"company_profile":  "Perfil de empresa",
		"account":          "Cuenta",
		"change_password":  "Cambiar contraseña",
		"current_password": "Contraseña actual",
		"new_password":     "Nueva contraseña",
		"products":         "Productos",
		"total_stock":      "Unidades en existencia",
		"inventory_value":  "Valor del inventario",
		"low_stock":        "Existencia baja",
		"and_more":         "y %d más",
		"revenue":          "Ingresos cotizados",
		"profit":           "Utilidad",
		"margin":           "Margen",
		"welcome":          "Cotiza, controla tu inventario y comparte PDFs con tus clientes.",
	},
	English: {
		"required":             "This field is required.",
		"too_long":             "The value is too long.",
		"invalid_email":        "Enter a valid email address.",
		"invalid_format":       "The format is not valid.",
		"invalid_number":       "Enter a valid number.",
		"must_be_positive":     "Must be greater than zero.",
		"must_be_non_negative": "Cannot be negative.",
		"max_two_decimals":     "Use at most two decimal places.",
		"too_large":            "The value is too large.",
		"total_too_large":      "The quote total is too large.",
		"invalid_choice":       "Select a valid choice.",
		"not_found":            "Select a valid choice.",
		"at_least_one_line":    "Add at least one line to the quote.",
		"duplicate_sku":        "A product with this SKU already exists. Enter a different identifier or edit the existing product.",
		"email_taken":          "An account with this email already exists.",
		"password_too_short":   "The password must be at least 8 characters long.",
		"password_mismatch":    "The passwords do not match.",
		"wrong_password":       "The current password is not correct.",
		"invalid_image":        "Upload a valid image (PNG, JPG, GIF or WebP).",
		"file_too_large":       "The file is larger than the 2 MB limit.",
		"invalid_credentials":  "Wrong email or password.",
		"form_errors":          "Please review the highlighted fields.",

		"client_created": "Client registered.",
		"client_updated": "Client updated.",
		"client_deleted": "Client deleted.",
		"item_created":   "Product added to inventory.",
		"item_updated":   "Product updated.",
		"item_deleted":   "Product removed from inventory.",
		"item_in_use":    "This product cannot be deleted because a quote uses it.",
		"quote_created":  "Quote created.",
		"quote_updated":  "Quote updated.",
		"quote_deleted":  "Quote deleted.",
		"report_created": "Report saved.",
		"report_updated": "Report updated.",
		"report_deleted": "Report deleted.",
		"profile_saved":  "Company profile updated.",
		"account_saved":  "Account details updated.",
		"password_saved": "Password updated.",

		"nav_dashboard":    "Home",
		"nav_clients":      "Clients",
		"nav_inventory":    "Inventory",
		"nav_quotes":       "Quotes",
		"nav_reports":      "Reports",
		"nav_profile":      "Profile",
		"login":            "Log in",
		"logout":           "Log out",
		"signup":           "Sign up",
		"save":             "Save",
		"cancel":           "Cancel",
		"edit":             "Edit",
		"delete":           "Delete",
		"new":              "New",
		"confirm_delete":   "Are you sure you want to delete it?",
		"empty_list":       "Nothing here yet.",
		"name":             "Name",
		"email":            "Email",
		"password":         "Password",
		"password_confirm": "Confirm password",
		"stock":            "Stock",
		"cost":             "Cost",
		"client":           "Client",
		"status":           "Status",
		"date":             "Date",
		"item":             "Product",
		"quantity":         "Quantity",
		"unit_price":       "Unit price",
		"add_line":         "Add line",
		"download_pdf":     "Download PDF",
		"description":      "Description",
		"legal_name":       "Legal name",
		"tax_id":           "Tax ID",
		"tax_address":      "Tax address",
		"contact_email":    "Contact email",
		"contact_phone":    "Contact phone",
		"remove_logo":      "Remove logo",
		"company_profile":  "Company profile",
		"account":          "Account",
		"change_password":  "Change password",
		"current_password": "Current password",
		"new_password":     "New password",
		"products":         "Products",
		"total_stock":      "Units in stock",
		"inventory_value":  "Inventory value",
		"low_stock":        "Low stock",
		"and_more":         "and %d more",
		"revenue":          "Quoted revenue",
		"profit":           "Profit",
		"margin":           "Margin",
		"welcome":          "Quote, track your inventory and share PDFs with your clients.",
	},
}

// Supported reports whether lang has a message table.
func Supported(lang string) bool {
	_, ok := messages[lang]
	return ok
}

// DetectLanguage picks the first supported language of an Accept-Language
// header, defaulting to Spanish.
func DetectLanguage(header string) string {
	for _, part := range strings.Split(header, ",") {
		tag := strings.TrimSpace(strings.SplitN(part, ";", 2)[0])
		base := strings.ToLower(strings.SplitN(tag, "-", 2)[0])
		if Supported(base) {
			return base
		}
	}
	return Default
}

// T translates code, falling back to Spanish and then to the code itself.
func T(lang, code string) string {
	if m, ok := messages[lang]; ok {
		if s, ok := m[code]; ok {
			return s
		}
	}
	if s, ok := messages[Default][code]; ok {
		return s
	}
	return code
}

// FromRequest resolves the language from the lang query parameter, the
// lang cookie, then Accept-Language.
func FromRequest(r *http.Request) string {
	if l := r.URL.Query().Get("lang"); Supported(l) {
		return l
	}
	if c, err := r.Cookie(cookieName); err == nil && Supported(c.Value) {
		return c.Value
	}
	return DetectLanguage(r.Header.Get("Accept-Language"))
}

// Remember stores lang in a cookie for later requests.
func Remember(w http.ResponseWriter, lang string) {
	http.SetCookie(w, &http.Cookie{Name: cookieName, Value: lang, Path: "/", MaxAge: 365 * 24 * 3600, SameSite: http.SameSiteLaxMode})
}

type ctxKey struct{}

func WithLang(ctx context.Context, lang string) context.Context {
	return context.WithValue(ctx, ctxKey{}, lang)
}

// FromContext returns the request language, Spanish when unset.
func FromContext(ctx context.Context) string {
	if l, ok := ctx.Value(ctxKey{}).(string); ok && l != "" {
		return l
	}
	return Default
}
