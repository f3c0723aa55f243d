package alphavantage

// DTOs del API. Las keys numeradas y los números-como-string son la forma
// real del proveedor; se quedan en este paquete y no salen de él.

type dailyResponse struct {
	MetaData     map[string]string   `json:"Meta Data"`
	Series       map[string]dailyBar `json:"Time Series (Daily)"`
	Note         string              `json:"Note"`
	Information  string              `json:"Information"`
	ErrorMessage string              `json:"Error Message"`
}

type dailyBar struct {
	Open     string `json:"1. open"`
	High     string `json:"2. high"`
	Low      string `json:"3. low"`
	Close    string `json:"4. close"`
	AdjClose string `json:"5. adjusted close"`
	Volume   string `json:"6. volume"`
}
