package cbr

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/Dan9191/finance-dashboard/internal/config"
	"github.com/beevik/etree"
	"github.com/sirupsen/logrus"
)

// CBRClient handles integration with Central Bank of Russia
type CBRClient struct {
	url    string
	client *http.Client
	log    *logrus.Logger
}

// NewCBRClient initializes a new CBR client
func NewCBRClient(cfg *config.Config, log *logrus.Logger) *CBRClient {
	return &CBRClient{
		url: cfg.CBRURL,
		client: &http.Client{
			Timeout: 5 * time.Second,
		},
		log: log,
	}
}

// Rates is the official RUB price of one unit of each currency on Date
type Rates struct {
	Date       time.Time
	RUBPerUnit map[string]float64
}

// buildSOAPRequest creates a SOAP request for the daily rates
func (c *CBRClient) buildSOAPRequest(onDate time.Time) string {
	return fmt.Sprintf(`<?xml version="1.0" encoding="utf-8"?>
		<soap12:Envelope xmlns:soap12="http://www.w3.org/2003/05/soap-envelope">
			<soap12:Body>
				<GetCursOnDateXML xmlns="http://web.cbr.ru/">
					<On_date>%s</On_date>
				</GetCursOnDateXML>
			</soap12:Body>
		</soap12:Envelope>`, onDate.Format("2006-01-02"))
}

// sendRequest sends SOAP request to CBR
func (c *CBRClient) sendRequest(ctx context.Context, soapRequest string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewBufferString(soapRequest))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/soap+xml; charset=utf-8")
	req.Header.Set("SOAPAction", "http://web.cbr.ru/GetCursOnDateXML")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	c.log.Debugf("CBR XML response: %s", string(body))

	return body, nil
}

// parseXMLResponse extracts RUB-per-unit rates from the ValuteData document
func (c *CBRClient) parseXMLResponse(rawBody []byte) (map[string]float64, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(rawBody); err != nil {
		return nil, fmt.Errorf("failed to parse XML: %w", err)
	}

	elements := doc.FindElements("//ValuteData/ValuteCursOnDate")
	if len(elements) == 0 {
		return nil, fmt.Errorf("no currency data found in XML")
	}

	rates := make(map[string]float64, len(elements))
	for _, el := range elements {
		code := el.FindElement("./VchCode")
		curs := el.FindElement("./Vcurs")
		nom := el.FindElement("./Vnom")
		if code == nil || curs == nil || nom == nil {
			continue
		}

		value, err := parseNumber(curs.Text())
		if err != nil {
			return nil, fmt.Errorf("failed to parse rate for %s: %w", code.Text(), err)
		}
		nominal, err := parseNumber(nom.Text())
		if err != nil || nominal == 0 {
			return nil, fmt.Errorf("invalid nominal for %s: %q", code.Text(), nom.Text())
		}
		rates[strings.TrimSpace(code.Text())] = value / nominal
	}

	if len(rates) == 0 {
		return nil, fmt.Errorf("no usable currency entries in XML")
	}
	rates["RUB"] = 1
	return rates, nil
}

func parseNumber(s string) (float64, error) {
	return strconv.ParseFloat(strings.ReplaceAll(strings.TrimSpace(s), ",", "."), 64)
}

// GetRates retrieves official rates for the given day
func (c *CBRClient) GetRates(ctx context.Context, onDate time.Time) (*Rates, error) {
	body, err := c.sendRequest(ctx, c.buildSOAPRequest(onDate))
	if err != nil {
		return nil, err
	}

	rubPerUnit, err := c.parseXMLResponse(body)
	if err != nil {
		return nil, err
	}

	c.log.Infof("Retrieved %d CBR rates for %s", len(rubPerUnit), onDate.Format("2006-01-02"))
	return &Rates{Date: onDate, RUBPerUnit: rubPerUnit}, nil
}
