package notification

import (
	"context"
	"fmt"
	"net/url"
)

// SendPasswordReset emails a dashboard admin a one-time reset link. The
// token expires server-side; the email only warns about it.
func (s *EmailService) SendPasswordReset(ctx context.Context, baseResetURL, email, name, token string) error {
	q := url.Values{}
	q.Set("token", token)
	resetURL := baseResetURL + "?" + q.Encode()

	subject := "Restablecer Contraseña - Forma"
	html := fmt.Sprintf(`<!DOCTYPE html>
<html lang="es">
<body style="margin:0;padding:0;background-color:#f8f9fa;font-family:Arial,Helvetica,sans-serif;">
  <div style="max-width:600px;margin:0 auto;background-color:#ffffff;padding:30px;">
    <h2 style="color:#373737;">Hola %s,</h2>
    <p style="color:#555;line-height:1.6;">
      Recibimos una solicitud para restablecer la contrase&ntilde;a de tu cuenta.
      Si no fuiste t&uacute;, puedes ignorar este correo.
    </p>
    <div style="text-align:center;margin:25px 0;">
      <a href="%s" style="display:inline-block;background-color:#373737;color:#ffffff;text-decoration:none;padding:15px 30px;border-radius:8px;font-weight:600;">
        Restablecer Contrase&ntilde;a
      </a>
    </div>
    <p style="color:#555;line-height:1.6;">
      El enlace es v&aacute;lido por una hora.
    </p>
  </div>
</body>
</html>`, name, resetURL)

	return s.Send(ctx, email, name, subject, html)
}

// PaymentInstructions is the data behind the "send your SINPE proof" email.
type PaymentInstructions struct {
	UserEmail    string
	UserName     string
	GymName      string
	SinpePhone   string
	MonthlyFee   float64
	MembershipID string
	PaymentID    string
}

// SendPaymentInstructions emails a member the SINPE payment steps with a
// link to the proof upload form.
func (s *EmailService) SendPaymentInstructions(ctx context.Context, baseUploadURL string, data PaymentInstructions) error {
	q := url.Values{}
	q.Set("membershipId", data.MembershipID)
	if data.PaymentID != "" {
		q.Set("paymentId", data.PaymentID)
	}
	uploadURL := baseUploadURL + "?" + q.Encode()

	subject := "Comprobante de Pago Requerido - Forma"
	html := fmt.Sprintf(`<!DOCTYPE html>
<html lang="es">
<body style="margin:0;padding:0;background-color:#f8f9fa;font-family:Arial,Helvetica,sans-serif;">
  <div style="max-width:600px;margin:0 auto;background-color:#ffffff;padding:30px;">
    <h2 style="color:#373737;">&iexcl;Hola %s!</h2>
    <p style="color:#555;line-height:1.6;">
      Tu registro en <strong>%s</strong> ha sido exitoso.
      Para activar tu membres&iacute;a, necesitamos que env&iacute;es el comprobante de pago.
    </p>
    <div style="background-color:#f8f9fa;border-radius:8px;padding:20px;margin:20px 0;">
      <p style="margin:0 0 8px 0;color:#666;">Gimnasio: <strong style="color:#373737;">%s</strong></p>
      <p style="margin:0 0 8px 0;color:#666;">Precio: <strong style="color:#373737;">&#8353;%.0f</strong></p>
      <p style="margin:0;color:#666;">SINPE M&oacute;vil: <strong style="color:#373737;">%s</strong></p>
    </div>
    <ol style="color:#373737;line-height:1.8;">
      <li>Realiza el pago por SINPE M&oacute;vil al n&uacute;mero del gimnasio</li>
      <li>Toma una captura de pantalla del comprobante</li>
      <li>Sube la imagen usando el bot&oacute;n de abajo</li>
    </ol>
    <div style="text-align:center;margin:25px 0;">
      <a href="%s" style="display:inline-block;background-color:#28a745;color:#ffffff;text-decoration:none;padding:15px 30px;border-radius:8px;font-weight:600;">
        Subir Comprobante de Pago
      </a>
    </div>
    <p style="color:#555;line-height:1.6;">
      Una vez que se verifique tu pago, tu membres&iacute;a ser&aacute; activada autom&aacute;ticamente.
    </p>
  </div>
</body>
</html>`, data.UserName, data.GymName, data.GymName, data.MonthlyFee, data.SinpePhone, uploadURL)

	return s.Send(ctx, data.UserEmail, data.UserName, subject, html)
}
