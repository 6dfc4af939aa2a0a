// Package mailtemplate holds the serial mail content installed by the migration.
// Templates use the storefront's Twig-style syntax and are rendered with the
// variables declared by the serial paid event.
package mailtemplate

const (
	TypeSerialTechnicalName = "serial"
	TypeSerialName          = "ESD - Serial number"
	TypeSerialNameDE        = "ESD - Seriennummer"

	// AvailableEntities maps template variables to entity definitions.
	AvailableEntities = `{"order":"order","salesChannel":"sales_channel"}`
)

// Content is one language's mail content.
type Content struct {
	Subject      string
	Description  string
	SenderName   string
	ContentHTML  string
	ContentPlain string
}

func English() Content {
	return Content{
		Subject:      "Your serial number from the product of order {{ order.orderNumber }}",
		Description:  "Serial number template",
		SenderName:   "No Reply",
		ContentHTML:  serialHTML,
		ContentPlain: serialPlain,
	}
}

func German() Content {
	return Content{
		Subject:      "Ihre Seriennummer aus dem Produkt der Bestellung {{ order.orderNumber }}",
		Description:  "Seriennummernvorlage",
		SenderName:   "Keine Antwort",
		ContentHTML:  serialHTMLDE,
		ContentPlain: serialPlainDE,
	}
}

const serialHTML = `<div style="font-family:arial; font-size:12px;">
    <p>
        Hello {{ order.orderCustomer.firstName }} {{ order.orderCustomer.lastName }},<br/>
        <br/>
        thank you for your order {{ order.orderNumber }}. Here are the serial numbers of the products you bought:
    </p>
    <table width="80%" border="0" style="font-family:Arial, Helvetica, sans-serif; font-size:12px;">
        <tr>
            <td bgcolor="#F7F7F2" style="border-bottom:1px solid #cccccc;"><strong>Product</strong></td>
            <td bgcolor="#F7F7F2" style="border-bottom:1px solid #cccccc;"><strong>Serial number</strong></td>
        </tr>
        {% for esdSerial in esdSerials %}
        <tr>
            <td style="border-bottom:1px solid #cccccc;">{{ esdSerial.productName }}</td>
            <td style="border-bottom:1px solid #cccccc;">{{ esdSerial.serial }}</td>
        </tr>
        {% endfor %}
    </table>
</div>`

const serialPlain = `Hello {{ order.orderCustomer.firstName }} {{ order.orderCustomer.lastName }},

thank you for your order {{ order.orderNumber }}. Here are the serial numbers of the products you bought:
{% for esdSerial in esdSerials %}
{{ esdSerial.productName }}: {{ esdSerial.serial }}{% endfor %}
`

const serialHTMLDE = `<div style="font-family:arial; font-size:12px;">
    <p>
        Hallo {{ order.orderCustomer.firstName }} {{ order.orderCustomer.lastName }},<br/>
        <br/>
        vielen Dank für Ihre Bestellung {{ order.orderNumber }}. Hier sind die Seriennummern der gekauften Produkte:
    </p>
    <table width="80%" border="0" style="font-family:Arial, Helvetica, sans-serif; font-size:12px;">
        <tr>
            <td bgcolor="#F7F7F2" style="border-bottom:1px solid #cccccc;"><strong>Produkt</strong></td>
            <td bgcolor="#F7F7F2" style="border-bottom:1px solid #cccccc;"><strong>Seriennummer</strong></td>
        </tr>
        {% for esdSerial in esdSerials %}
        <tr>
            <td style="border-bottom:1px solid #cccccc;">{{ esdSerial.productName }}</td>
            <td style="border-bottom:1px solid #cccccc;">{{ esdSerial.serial }}</td>
        </tr>
        {% endfor %}
    </table>
</div>`

const serialPlainDE = `Hallo {{ order.orderCustomer.firstName }} {{ order.orderCustomer.lastName }},

vielen Dank für Ihre Bestellung {{ order.orderNumber }}. Hier sind die Seriennummern der gekauften Produkte:
{% for esdSerial in esdSerials %}
{{ esdSerial.productName }}: {{ esdSerial.serial }}{% endfor %}
`
