package publishers

import (
	"encoding/json"
	"fmt"
	"log"

	"github.com/google/uuid"
	"github.com/streadway/amqp"
)

// BienMessage représente un message d'événement sur un bien
// Le search-service consomme ces messages pour tenir son index à jour
type BienMessage struct {
	EventID string `json:"event_id"`
	Action  string `json:"action"` // "create", "update", "delete"
	BienID  uint   `json:"bien_id"`
}

// EventPublisher définit l'interface de publication des événements
type EventPublisher interface {
	Publish(action string, bienID uint)
	Close() error
}

// RabbitMQPublisher publie les événements de biens sur RabbitMQ
type RabbitMQPublisher struct {
	connection *amqp.Connection
	channel    *amqp.Channel
	queueName  string
}

// NewRabbitMQPublisher crée une nouvelle instance de RabbitMQPublisher
// Déclare la queue durable pour que les messages survivent à un redémarrage
func NewRabbitMQPublisher(rabbitURL, queueName string) (*RabbitMQPublisher, error) {
	log.Printf("Connexion à RabbitMQ sur %s", rabbitURL)

	conn, err := amqp.Dial(rabbitURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	if queueName == "" {
		queueName = "biens_queue"
	}

	_, err = ch.QueueDeclare(
		queueName, // name
		true,      // durable
		false,     // delete when unused
		false,     // exclusive
		false,     // no-wait
		nil,       // arguments
	)
	if err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to declare queue: %w", err)
	}

	log.Printf("Queue '%s' déclarée", queueName)

	return &RabbitMQPublisher{
		connection: conn,
		channel:    ch,
		queueName:  queueName,
	}, nil
}

// Publish envoie un événement {event_id, action, bien_id} sur la queue
// Un échec de publication est loggé mais ne fait pas échouer la requête :
// l'index de recherche est une vue dérivée, pas la source de vérité
func (p *RabbitMQPublisher) Publish(action string, bienID uint) {
	msg := BienMessage{
		EventID: uuid.NewString(),
		Action:  action,
		BienID:  bienID,
	}

	body, err := json.Marshal(msg)
	if err != nil {
		log.Printf("Erreur d'encodage de l'événement %s bien=%d: %v", action, bienID, err)
		return
	}

	err = p.channel.Publish(
		"",          // exchange (défaut)
		p.queueName, // routing key = nom de la queue
		false,       // mandatory
		false,       // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Body:         body,
		},
	)
	if err != nil {
		log.Printf("Erreur de publication de l'événement %s bien=%d: %v", action, bienID, err)
		return
	}

	log.Printf("Événement publié: action=%s bien_id=%d event_id=%s", action, bienID, msg.EventID)
}

// Close ferme proprement le channel et la connexion
func (p *RabbitMQPublisher) Close() error {
	if err := p.channel.Close(); err != nil {
		p.connection.Close()
		return err
	}
	return p.connection.Close()
}

// NoopPublisher est utilisé quand RabbitMQ n'est pas configuré
// (développement local sans broker) : les événements sont ignorés
type NoopPublisher struct{}

func (NoopPublisher) Publish(action string, bienID uint) {}
func (NoopPublisher) Close() error                       { return nil }
